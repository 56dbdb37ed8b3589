package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/cli/config"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdUser() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage hub users",
		Commands: []*cli.Command{
			cmdUserAdd(),
		},
	}
}

func cmdUserAdd() *cli.Command {
	var repoCfg config.Repository
	var email, password, name string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Sign-in email",
			Required:    true,
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Password (at least 8 characters)",
			Required:    true,
			Sources:     cli.EnvVars("TABLERO_USER_PASSWORD"),
			Destination: &password,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name",
			Destination: &name,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create a user who can sign in with a password",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// The secret only signs cookies, which this command never issues.
			authUC := usecase.NewAuthUseCase(repo, nil)
			user, err := authUC.CreateUser(ctx, email, password, name)
			if err != nil {
				return goerr.Wrap(err, "failed to create user")
			}

			logging.Default().Info("User created", "user_id", user.ID, "email", user.Email)
			return nil
		},
	}
}
