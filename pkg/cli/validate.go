package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/cli/config"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// ErrInconsistentRecords is returned by validate --check-db when stored
// records do not match the configuration
var ErrInconsistentRecords = goerr.New("stored records do not match the configuration")

func cmdValidate() *cli.Command {
	var (
		appCfg  config.AppConfig
		repoCfg config.Repository
		checkDB bool
	)

	flags := append(appCfg.Flags(), repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also check stored records against the configuration",
		Sources:     cli.EnvVars("TABLERO_VALIDATE_CHECK_DB"),
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Check the configuration file and optionally the stored records",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration is invalid")
			}
			logging.From(ctx).Info("configuration is valid",
				"pillars", len(app.Calendar.Pillars),
				"cards", len(app.Cards),
				"talks", len(app.Talks),
			)

			if !checkDB {
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to open repository")
			}
			defer safe.Close(ctx, repo)

			result, err := usecase.New(repo, usecase.WithAppConfig(app)).ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to check records")
			}

			printIssues(os.Stdout, result)
			if result.HasIssues() {
				return goerr.Wrap(ErrInconsistentRecords, "record check failed",
					goerr.V("issues", len(result.Issues)))
			}
			return nil
		},
	}
}

// printIssues lists every inconsistent record, one per line
func printIssues(w io.Writer, result *usecase.ValidationResult) {
	if !result.HasIssues() {
		readyColor.Fprintln(w, "All records match the configuration")
		return
	}

	headerColor.Fprintf(w, "%d record(s) do not match the configuration\n", len(result.Issues))
	for _, issue := range result.Issues {
		behindColor.Fprintf(w, "  %s/%s", issue.Table, issue.RecordID)
		fmt.Fprintf(w, ": %s", issue.Message)
		if issue.Actual != "" {
			dimColor.Fprintf(w, " (%s)", issue.Actual)
		}
		fmt.Fprintln(w)
	}
}
