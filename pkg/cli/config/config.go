package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/tablero/pkg/domain/model/config"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig is the TOML hub configuration. Every section is optional; missing
// values fall back to the built-in defaults.
type AppConfig struct {
	path string

	Board    BoardSection    `toml:"board"`
	Calendar CalendarSection `toml:"calendar"`
	Cards    []Entry         `toml:"card"`
	Talks    []Entry         `toml:"talk"`
	Chat     ChatSection     `toml:"chat"`
}

type BoardSection struct {
	ClearCompletedOnReopen bool     `toml:"clear_completed_on_reopen"`
	Roles                  []string `toml:"roles"`
}

type CalendarSection struct {
	Pillars       []string `toml:"pillars"`
	DefaultEffort string   `toml:"default_effort"`
	SummaryLimit  int      `toml:"summary_limit"`
}

type ChatSection struct {
	Prompt string `toml:"prompt"`
}

// Entry is a card or talk
type Entry struct {
	Key   string `toml:"key"`
	Title string `toml:"title"`
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML hub configuration",
			Sources:     cli.EnvVars("TABLERO_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the file given by --config. Without a file the defaults are
// used.
func (a *AppConfig) Configure() (*domainConfig.App, error) {
	if a.path == "" {
		return domainConfig.Default(), nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	return loaded.ToDomain()
}

func validateEntries(section string, entries []Entry) error {
	seen := make(map[string]bool)
	for i, e := range entries {
		if strings.TrimSpace(e.Key) == "" {
			return goerr.Wrap(ErrMissingKey, "entry has no key",
				goerr.V(SectionKey, section), goerr.V(IndexKey, i))
		}
		if strings.TrimSpace(e.Title) == "" {
			return goerr.Wrap(ErrMissingName, "entry has no title",
				goerr.V(SectionKey, section), goerr.V(KeyKey, e.Key))
		}
		if seen[e.Key] {
			return goerr.Wrap(ErrDuplicateKey, "duplicate entry",
				goerr.V(SectionKey, section), goerr.V(KeyKey, e.Key))
		}
		seen[e.Key] = true
	}
	return nil
}

// Validate checks keys and enumerations
func (a *AppConfig) Validate() error {
	seen := make(map[string]bool)
	for i, p := range a.Calendar.Pillars {
		if strings.TrimSpace(p) == "" {
			return goerr.Wrap(ErrMissingKey, "empty pillar", goerr.V(SectionKey, "calendar"), goerr.V(IndexKey, i))
		}
		if seen[p] {
			return goerr.Wrap(ErrDuplicateKey, "duplicate pillar", goerr.V(SectionKey, "calendar"), goerr.V(KeyKey, p))
		}
		seen[p] = true
	}

	if a.Calendar.DefaultEffort != "" {
		if _, err := types.ParseEffort(a.Calendar.DefaultEffort); err != nil {
			return goerr.Wrap(ErrInvalidEffort, "invalid default_effort", goerr.V(KeyKey, a.Calendar.DefaultEffort))
		}
	}
	if a.Calendar.SummaryLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "summary_limit must not be negative",
			goerr.V("summary_limit", a.Calendar.SummaryLimit))
	}

	if err := validateEntries("card", a.Cards); err != nil {
		return err
	}
	return validateEntries("talk", a.Talks)
}

// LoadAppConfiguration loads the hub configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomain merges the file over the defaults
func (a *AppConfig) ToDomain() (*domainConfig.App, error) {
	app := domainConfig.Default()

	app.Board.ClearCompletedOnReopen = a.Board.ClearCompletedOnReopen
	app.Board.Roles = append(app.Board.Roles, a.Board.Roles...)

	if len(a.Calendar.Pillars) > 0 {
		app.Calendar.Pillars = make([]types.Pillar, len(a.Calendar.Pillars))
		for i, p := range a.Calendar.Pillars {
			app.Calendar.Pillars[i] = types.Pillar(p)
		}
	}
	if a.Calendar.DefaultEffort != "" {
		effort, err := types.ParseEffort(a.Calendar.DefaultEffort)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidEffort, "invalid default_effort", goerr.V(KeyKey, a.Calendar.DefaultEffort))
		}
		app.Calendar.DefaultEffort = effort
	}
	if a.Calendar.SummaryLimit > 0 {
		app.Calendar.SummaryLimit = a.Calendar.SummaryLimit
	}

	if len(a.Cards) > 0 {
		app.Cards = make([]domainConfig.Card, len(a.Cards))
		for i, c := range a.Cards {
			app.Cards[i] = domainConfig.Card{Key: c.Key, Title: c.Title}
		}
	}
	if len(a.Talks) > 0 {
		app.Talks = make([]domainConfig.Talk, len(a.Talks))
		for i, t := range a.Talks {
			app.Talks[i] = domainConfig.Talk{Key: t.Key, Title: t.Title}
		}
	}

	app.ChatPrompt = a.Chat.Prompt
	return app, nil
}
