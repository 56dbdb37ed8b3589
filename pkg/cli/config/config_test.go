package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/cli/config"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablero.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		wantErr error
	}{
		{
			name: "full configuration",
			content: `
[board]
clear_completed_on_reopen = true
roles = ["Teaching", "Research"]

[calendar]
pillars = ["hot_take", "el_dato", "behind_the_scenes"]
default_effort = "medium"
summary_limit = 3

[[card]]
key = "fiscal-policy"
title = "Teaching: Fiscal Policy and Theory"

[[talk]]
key = "icml-2024"
title = "ICML, Latin x AI (2024)"

[chat]
prompt = "You are a running coach."
`,
		},
		{
			name:    "empty file uses defaults",
			content: "",
		},
		{
			name:    "file not found",
			missing: true,
			wantErr: config.ErrConfigNotFound,
		},
		{
			name:    "broken TOML",
			content: "[board\nroles = 1",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "duplicate card key",
			content: `
[[card]]
key = "rtauchen"
title = "Project: Rtauchen"

[[card]]
key = "rtauchen"
title = "Again"
`,
			wantErr: config.ErrDuplicateKey,
		},
		{
			name: "talk without title",
			content: `
[[talk]]
key = "pasc-2019"
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "card without key",
			content: `
[[card]]
title = "Nameless"
`,
			wantErr: config.ErrMissingKey,
		},
		{
			name: "duplicate pillar",
			content: `
[calendar]
pillars = ["el_dato", "el_dato"]
`,
			wantErr: config.ErrDuplicateKey,
		},
		{
			name: "unknown effort",
			content: `
[calendar]
default_effort = "huge"
`,
			wantErr: config.ErrInvalidEffort,
		},
		{
			name: "negative summary limit",
			content: `
[calendar]
summary_limit = -1
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.toml")
			if !tt.missing {
				path = writeConfig(t, tt.content)
			}

			cfg, err := config.LoadAppConfiguration(path)
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}
}

func TestAppConfig_ToDomain(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[board]
clear_completed_on_reopen = true
roles = ["Teaching"]

[calendar]
pillars = ["el_dato", "behind_the_scenes"]
default_effort = "high"
summary_limit = 3

[[talk]]
key = "icml-2024"
title = "ICML"

[chat]
prompt = "Be brief."
`))
		gt.NoError(t, err).Required()

		app, err := cfg.ToDomain()
		gt.NoError(t, err).Required()
		gt.Bool(t, app.Board.ClearCompletedOnReopen).True()
		gt.Array(t, app.Board.Roles).Length(1)
		gt.Array(t, app.Calendar.Pillars).Length(2).Required()
		gt.Value(t, app.Calendar.Pillars[1]).Equal(types.Pillar("behind_the_scenes"))
		gt.Value(t, app.Calendar.DefaultEffort).Equal(types.EffortHigh)
		gt.Value(t, app.Calendar.SummaryLimit).Equal(3)
		gt.Array(t, app.Talks).Length(1)
		gt.Value(t, app.TalkTitle("icml-2024")).Equal("ICML")
		gt.Value(t, app.ChatPrompt).Equal("Be brief.")

		// cards were not given so the defaults stay
		gt.Bool(t, app.HasCard("fiscal-policy")).True()
	})

	t.Run("empty file keeps every default", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, ""))
		gt.NoError(t, err).Required()

		app, err := cfg.ToDomain()
		gt.NoError(t, err).Required()
		gt.Bool(t, app.Board.ClearCompletedOnReopen).False()
		gt.Array(t, app.Calendar.Pillars).Length(5)
		gt.Value(t, app.Calendar.DefaultEffort).Equal(types.EffortLow)
		gt.Value(t, app.Calendar.SummaryLimit).Equal(5)
		gt.Array(t, app.Cards).Length(12)
	})
}

func TestAppConfig_Configure(t *testing.T) {
	var cfg config.AppConfig
	app, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, app.Talks).Length(4)
}
