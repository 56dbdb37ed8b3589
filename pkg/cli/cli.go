package cli

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/cli/config"
	"github.com/secmon-lab/tablero/pkg/utils/errutil"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run parses args and executes the selected subcommand. The logger and error
// reporting are set up before any subcommand runs and flushed after.
func Run(ctx context.Context, args []string, version string) error {
	var (
		loggerCfg config.Logger
		flush     = func() {}
	)

	cmd := &cli.Command{
		Name:    "tablero",
		Usage:   "Kanban board, content calendar and teaching materials in one place",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closer, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			flush = closer

			logger := logging.Default().With("version", version)
			logger.Debug("logger configured", "logger", loggerCfg)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdValidate(),
			cmdUser(),
			cmdSummary(),
		},
	}

	err := cmd.Run(ctx, args)
	if err != nil {
		errutil.Handle(ctx, err, "tablero failed")
	}
	flush()
	return err
}
