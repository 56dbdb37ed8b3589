package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/cli/config"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSummary() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print the content calendar summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			summary, err := usecase.New(repo, usecase.WithAppConfig(app)).Calendar.Summary(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to compute summary")
			}

			printSummary(os.Stdout, summary)
			return nil
		},
	}
}

var (
	headerColor = color.New(color.Bold)
	readyColor  = color.New(color.FgGreen)
	behindColor = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

func printSummary(w io.Writer, s *usecase.Summary) {
	headerColor.Fprintf(w, "Content calendar: %d/%d ready (%d%%)\n", s.Ready, s.Total, s.Pct)

	for _, p := range s.Pillars {
		c := behindColor
		if p.Total > 0 && p.Ready == p.Total {
			c = readyColor
		}
		c.Fprintf(w, "  %-18s %d/%d\n", p.Label, p.Ready, p.Total)
	}

	fmt.Fprintln(w)
	headerColor.Fprintf(w, "This week (%s to %s): %d to finish\n", s.From, s.Through, s.ThisWeekTotal)
	if len(s.ThisWeek) == 0 {
		dimColor.Fprintln(w, "  nothing pending")
		return
	}
	for _, item := range s.ThisWeek {
		fmt.Fprintf(w, "  %s  %-40s %d/5\n", item.ScheduledDate, item.Title, item.CompletedSteps())
	}
	if more := s.ThisWeekTotal - len(s.ThisWeek); more > 0 {
		dimColor.Fprintf(w, "  and %d more\n", more)
	}
}
