package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/cli/config"
)

func TestGemini(t *testing.T) {
	t.Run("disabled without project", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		gt.Bool(t, cfg.Enabled()).False()

		client, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("enabled with project", func(t *testing.T) {
		cfg := config.NewGeminiForTest("my-project", "us-central1")
		gt.Bool(t, cfg.Enabled()).True()
	})

	t.Run("flags", func(t *testing.T) {
		var cfg config.Gemini
		names := map[string]bool{}
		for _, f := range cfg.Flags() {
			names[f.Names()[0]] = true
		}
		gt.Bool(t, names["gemini-project"]).True()
		gt.Bool(t, names["gemini-location"]).True()
		gt.Bool(t, names["gemini-model"]).True()
	})
}
