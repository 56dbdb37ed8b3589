package model

import "time"

// Analytics view names
const (
	ViewSummary        = "analytics_summary"
	ViewDailySignups   = "analytics_daily_signups"
	ViewDailyPhotos    = "analytics_daily_photos"
	ViewPageViews      = "analytics_page_views"
	ViewSessions       = "analytics_sessions"
	ViewFunnel         = "analytics_funnel"
	ViewHourlyActivity = "analytics_hourly_activity"
	ViewEffects        = "analytics_effects"
	ViewTopRaces       = "analytics_top_races"
	ViewCloudinary     = "cloudinary_usage"
)

// AllAnalyticsViews returns every view the dashboard reads
func AllAnalyticsViews() []string {
	return []string{
		ViewSummary,
		ViewDailySignups,
		ViewDailyPhotos,
		ViewPageViews,
		ViewSessions,
		ViewFunnel,
		ViewHourlyActivity,
		ViewEffects,
		ViewTopRaces,
		ViewCloudinary,
	}
}

type AnalyticsSummary struct {
	TotalUsers             int64 `json:"total_users"`
	ActiveUsers24h         int64 `json:"active_users_24h"`
	ActiveUsers7d          int64 `json:"active_users_7d"`
	ActiveUsers30d         int64 `json:"active_users_30d"`
	TotalPhotos            int64 `json:"total_photos"`
	Photos24h              int64 `json:"photos_24h"`
	Photos7d               int64 `json:"photos_7d"`
	Photos30d              int64 `json:"photos_30d"`
	UsersWithUsername      int64 `json:"users_with_username"`
	UsersWithBio           int64 `json:"users_with_bio"`
	PublicProfiles         int64 `json:"public_profiles"`
	InstagramContributions int64 `json:"instagram_contributions"`
	TotalPoints            int64 `json:"total_points"`
}

type DailySignup struct {
	Day     string `json:"day"`
	Signups int64  `json:"signups"`
}

type DailyPhoto struct {
	Day    string `json:"day"`
	Photos int64  `json:"photos"`
}

type PageView struct {
	Page        string `json:"page"`
	TotalViews  int64  `json:"total_views"`
	UniqueUsers int64  `json:"unique_users"`
}

type SessionDuration struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

type Funnel struct {
	Upload int64 `json:"upload"`
	Editor int64 `json:"editor"`
	Export int64 `json:"export"`
	Saved  int64 `json:"saved"`
}

type HourlyActivity struct {
	DayOfWeek int   `json:"day_of_week"`
	Hour      int   `json:"hour"`
	Count     int64 `json:"count"`
}

type EffectUsage struct {
	Effect string `json:"effect"`
	Count  int64  `json:"count"`
}

type TopRace struct {
	Race  string `json:"race"`
	Count int64  `json:"count"`
}

type CloudinaryUsage struct {
	Plan               string  `json:"plan"`
	CreditsUsed        float64 `json:"credits_used"`
	CreditsLimit       float64 `json:"credits_limit"`
	Transformations    int64   `json:"transformations"`
	BackgroundRemovals int64   `json:"background_removals"`
	StorageBytes       int64   `json:"storage_bytes"`
	BandwidthBytes     int64   `json:"bandwidth_bytes"`
	UpdatedAt          string  `json:"updated_at"`
}

// GaugeTier classifies credits usage
type GaugeTier string

const (
	GaugeOK       GaugeTier = "ok"
	GaugeWarn     GaugeTier = "warn"
	GaugeCritical GaugeTier = "critical"
)

// TierOf returns ok below 50 percent, warn below 80 percent, critical otherwise
func TierOf(pct float64) GaugeTier {
	switch {
	case pct < 50:
		return GaugeOK
	case pct < 80:
		return GaugeWarn
	default:
		return GaugeCritical
	}
}

// Credits is the derived gauge of cloudinary usage
type Credits struct {
	Used  float64   `json:"used"`
	Limit float64   `json:"limit"`
	Pct   float64   `json:"pct"`
	Tier  GaugeTier `json:"tier"`
}

// NewCredits derives the gauge. A non-positive limit yields 0 percent.
func NewCredits(used, limit float64) Credits {
	pct := 0.0
	if limit > 0 {
		pct = used * 100 / limit
	}
	return Credits{Used: used, Limit: limit, Pct: pct, Tier: TierOf(pct)}
}

// AverageSessionMinutes is the mean session duration in minutes, 0 if empty
func AverageSessionMinutes(sessions []SessionDuration) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var total float64
	for _, s := range sessions {
		total += s.DurationSeconds
	}
	return total / float64(len(sessions)) / 60
}

// Dashboard is the full analytics snapshot. A section whose view failed to
// load is left empty.
type Dashboard struct {
	Summary           *AnalyticsSummary `json:"summary"`
	DailySignups      []DailySignup     `json:"daily_signups"`
	DailyPhotos       []DailyPhoto      `json:"daily_photos"`
	PageViews         []PageView        `json:"page_views"`
	Sessions          []SessionDuration `json:"sessions"`
	Funnel            *Funnel           `json:"funnel"`
	HourlyActivity    []HourlyActivity  `json:"hourly_activity"`
	Effects           []EffectUsage     `json:"effects"`
	TopRaces          []TopRace         `json:"top_races"`
	Cloudinary        *CloudinaryUsage  `json:"cloudinary"`
	Credits           *Credits          `json:"credits"`
	AvgSessionMinutes float64           `json:"avg_session_minutes"`
	FetchedAt         time.Time         `json:"fetched_at"`
}
