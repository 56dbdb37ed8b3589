package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/cli/config"
	httpctrl "github.com/secmon-lab/tablero/pkg/controller/http"
	"github.com/secmon-lab/tablero/pkg/service/worker"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/errutil"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		addr              string
		analyticsInterval time.Duration
		appCfg            config.AppConfig
		repoCfg           config.Repository
		storageCfg        config.Storage
		geminiCfg         config.Gemini
		authCfg           config.Auth
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TABLERO_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "analytics-interval",
			Usage:       "How often the analytics dashboard is refreshed",
			Value:       worker.DefaultAnalyticsInterval,
			Sources:     cli.EnvVars("TABLERO_ANALYTICS_INTERVAL"),
			Destination: &analyticsInterval,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve the web app and its API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			storage, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}
			if llmClient == nil {
				logging.From(ctx).Info("chat is disabled, no Gemini project configured")
			} else {
				logging.From(ctx).Info("chat enabled", "gemini", geminiCfg)
			}

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			hub := httpctrl.NewHub()
			ucOpts := []usecase.Option{
				usecase.WithAppConfig(app),
				usecase.WithAuth(authUC),
				usecase.WithNotifier(hub),
				usecase.WithLLM(llmClient),
			}
			if storage != nil {
				ucOpts = append(ucOpts, usecase.WithStorage(storage))
			}
			uc := usecase.New(repo, ucOpts...)

			// A failed first load is shown to clients as a notice and retried
			// on the next read, so it does not stop the server.
			if err := uc.LoadAll(ctx); err != nil {
				errutil.Handle(ctx, err, "initial load failed")
			}

			realtime := worker.NewRealtimeWorker(hub, uc.Kanban, uc.Calendar)
			if err := realtime.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start realtime worker")
			}
			defer realtime.Stop()

			analytics := worker.NewAnalyticsRefreshWorker(uc.Analytics, analyticsInterval)
			if err := analytics.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start analytics worker")
			}
			defer analytics.Stop()

			httpHandler, err := httpctrl.New(uc,
				httpctrl.WithAuth(authUC),
				httpctrl.WithHub(hub),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			logging.From(ctx).Info("serving",
				"addr", addr,
				"backend", repoCfg.Backend(),
				"no_auth", authCfg.IsNoAuthMode(),
			)
			return runServer(ctx, server)
		},
	}
}

// runServer serves until SIGINT or SIGTERM, then drains in-flight requests
func runServer(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "http server stopped", goerr.V("addr", server.Addr))
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logging.Default().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "graceful shutdown failed")
		}
		return nil
	})
	return eg.Wait()
}
