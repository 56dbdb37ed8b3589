package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger configures the process logger and error reporting
type Logger struct {
	level     string
	format    string
	output    string
	sentryDSN string
	sentryEnv string
}

// Flags returns CLI flags for logging
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("TABLERO_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Category:    "Logging",
			Sources:     cli.EnvVars("TABLERO_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr, or a file path)",
			Value:       "stdout",
			Category:    "Logging",
			Sources:     cli.EnvVars("TABLERO_LOG_OUTPUT"),
			Destination: &l.output,
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Category:    "Logging",
			Sources:     cli.EnvVars("TABLERO_SENTRY_DSN"),
			Destination: &l.sentryDSN,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Logging",
			Sources:     cli.EnvVars("TABLERO_SENTRY_ENV"),
			Destination: &l.sentryEnv,
		},
	}
}

// LogValue hides the DSN
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
		slog.Bool("sentry", l.sentryDSN != ""),
		slog.String("sentry_env", l.sentryEnv),
	)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, goerr.Wrap(ErrInvalidConfig, "invalid log level", goerr.V("level", s))
	}
	return level, nil
}

func parseFormat(s string) (logging.Format, error) {
	switch strings.ToLower(s) {
	case "", "console":
		return logging.FormatConsole, nil
	case "json":
		return logging.FormatJSON, nil
	default:
		return 0, goerr.Wrap(ErrInvalidConfig, "invalid log format", goerr.V("format", s))
	}
}

// Configure installs the default logger and initializes Sentry when a DSN is
// set. The returned func flushes Sentry and closes a log file.
func (l *Logger) Configure() (func(), error) {
	level, err := parseLevel(l.level)
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(l.format)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer
		closer = func() {}
	)
	switch l.output {
	case "", "stdout", "-":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.OpenFile(l.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() { _ = f.Close() }
	}

	logging.SetDefault(logging.New(w, level, format))

	if l.sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         l.sentryDSN,
			Environment: l.sentryEnv,
		}); err != nil {
			closer()
			return nil, goerr.Wrap(err, "failed to initialize sentry")
		}
		fileCloser := closer
		closer = func() {
			sentry.Flush(2 * time.Second)
			fileCloser()
		}
	}

	return closer, nil
}
