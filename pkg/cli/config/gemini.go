package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini selects the Vertex AI model that answers the chat. Chat stays
// disabled until a project is given.
type Gemini struct {
	projectID string
	location  string
	model     string
}

func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project for the chat model, chat is disabled when empty",
			Category:    "Chat",
			Sources:     cli.EnvVars("TABLERO_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI location",
			Value:       "us-central1",
			Category:    "Chat",
			Sources:     cli.EnvVars("TABLERO_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Model name, the client default is used when empty",
			Category:    "Chat",
			Sources:     cli.EnvVars("TABLERO_GEMINI_MODEL"),
			Destination: &g.model,
		},
	}
}

// Enabled reports whether a project is configured
func (g *Gemini) Enabled() bool {
	return g.projectID != ""
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project", g.projectID),
		slog.String("location", g.location),
		slog.String("model", g.model),
	)
}

// Configure returns nil without error when chat is disabled
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if !g.Enabled() {
		return nil, nil
	}

	var opts []gemini.Option
	if g.model != "" {
		opts = append(opts, gemini.WithModel(g.model))
	}

	client, err := gemini.New(ctx, g.projectID, g.location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client",
			goerr.V("project", g.projectID), goerr.V("location", g.location))
	}
	return client, nil
}
