package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// minSecretLength is the HS256 key size
const minSecretLength = 32

// Auth holds CLI flags for password authentication
type Auth struct {
	secret    string
	lifetime  time.Duration
	noAuthUID string
}

// Flags returns CLI flags for authentication
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-secret",
			Usage:       "Secret used to sign session cookies (at least 32 bytes)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TABLERO_AUTH_SECRET"),
			Destination: &a.secret,
		},
		&cli.DurationFlag{
			Name:        "session-lifetime",
			Usage:       "Session lifetime",
			Value:       auth.DefaultTokenLifetime,
			Category:    "Authentication",
			Sources:     cli.EnvVars("TABLERO_SESSION_LIFETIME"),
			Destination: &a.lifetime,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the given user ID (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("TABLERO_NO_AUTH"),
			Destination: &a.noAuthUID,
		},
	}
}

// IsNoAuthMode reports whether authentication is skipped
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuthUID != ""
}

// Configure returns the authentication use case. --no-auth takes precedence
// over the secret.
func (a *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if a.IsNoAuthMode() {
		logging.Default().Warn("Running in no-auth mode (development only)", "user_id", a.noAuthUID)
		return usecase.NewNoAuthnUseCase(a.noAuthUID, "", a.noAuthUID), nil
	}

	if len(a.secret) < minSecretLength {
		return nil, goerr.Wrap(ErrWeakSecret, "set --auth-secret or --no-auth",
			goerr.V("length", len(a.secret)))
	}

	logging.Default().Info("Password authentication enabled", "session_lifetime", a.lifetime)
	return usecase.NewAuthUseCase(repo, []byte(a.secret), usecase.WithTokenLifetime(a.lifetime)), nil
}
