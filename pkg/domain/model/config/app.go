package config

import "github.com/secmon-lab/tablero/pkg/domain/types"

// Card is a teaching or project card that can have materials attached
type Card struct {
	Key   string
	Title string
}

// Talk is a talk that can have a slide deck attached
type Talk struct {
	Key   string
	Title string
}

// Board holds kanban options
type Board struct {
	// ClearCompletedOnReopen clears completed_at when a ticket leaves done
	ClearCompletedOnReopen bool
	Roles                  []string
}

// Calendar holds content calendar options
type Calendar struct {
	Pillars       []types.Pillar
	DefaultEffort types.Effort
	// SummaryLimit bounds the "this week" list
	SummaryLimit int
}

// App is the hub configuration loaded from the TOML file
type App struct {
	Board      Board
	Calendar   Calendar
	Cards      []Card
	Talks      []Talk
	ChatPrompt string
}

// DefaultSummaryLimit is the number of upcoming items listed in the summary
const DefaultSummaryLimit = 5

// Default returns the configuration used when no file is given
func Default() *App {
	return &App{
		Calendar: Calendar{
			Pillars:       types.DefaultPillars(),
			DefaultEffort: types.EffortLow,
			SummaryLimit:  DefaultSummaryLimit,
		},
		Cards: []Card{
			{Key: "fiscal-policy", Title: "Teaching: Fiscal Policy and Theory"},
			{Key: "advanced-methods", Title: "Teaching: Advanced Methods for Data Analysis"},
			{Key: "predictive-analytics", Title: "Teaching: Predictive Analytics"},
			{Key: "economia-5", Title: "Teaching: Economía 5, Intermediate Macroeconomics"},
			{Key: "dynamic-macro", Title: "Teaching: Dynamic Macroeconomics I"},
			{Key: "math-camp", Title: "Teaching: Summer Math Camp (ECON 897)"},
			{Key: "matlab-workshop", Title: "Teaching: MATLAB Workshop (ECON 1303)"},
			{Key: "computational-methods", Title: "Project: Computational Methods for Economists"},
			{Key: "la-rama-ciudadana", Title: "Project: La Rama Ciudadana"},
			{Key: "gmapsdistance", Title: "Project: gmapsdistance"},
			{Key: "rtauchen", Title: "Project: Rtauchen"},
			{Key: "berlin-marathon-ai", Title: "Project: Berlin Marathon AI"},
		},
		Talks: []Talk{
			{Key: "icml-2024", Title: "ICML, Latin x AI (2024)"},
			{Key: "scecr-2023", Title: "Symposium on Statistical Challenges (2023)"},
			{Key: "pasc-2019", Title: "PASC Conference (2019)"},
			{Key: "workshop-2025", Title: "Workshop Porto (2025)"},
		},
	}
}

// HasCard reports whether key is a configured card
func (a *App) HasCard(key string) bool {
	for _, c := range a.Cards {
		if c.Key == key {
			return true
		}
	}
	return false
}

// TalkTitle returns the configured title of a talk, or the key
func (a *App) TalkTitle(key string) string {
	for _, t := range a.Talks {
		if t.Key == key {
			return t.Title
		}
	}
	return key
}

// HasTalk reports whether key is a configured talk
func (a *App) HasTalk(key string) bool {
	for _, t := range a.Talks {
		if t.Key == key {
			return true
		}
	}
	return false
}
