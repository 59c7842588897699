// Package cli implements the manage command: account administration from
// the shell.
package cli

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite/coreapp/internal/app"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/repository/postgres"
	"github.com/ignite/coreapp/internal/service/account"
)

// Accounts is the account behaviour the commands use.
// *account.Service satisfies it.
type Accounts interface {
	CreateUser(ctx context.Context, p account.CreateParams) (*domain.Account, error)
	CreateSuperuser(ctx context.Context, email, password string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	SetPassword(ctx context.Context, id int64, password *string) error
	List(ctx context.Context, f account.ListFilter) ([]domain.Account, int, error)
}

// Opener connects the account service. The returned func releases its
// resources.
type Opener func(ctx context.Context, configPath string) (Accounts, func(), error)

// Execute runs the manage command tree and exits non-zero on error.
func Execute() {
	cmd := NewRootCmd(openAccounts, os.Getenv)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. getenv supplies MANAGE_PASSWORD.
func NewRootCmd(open Opener, getenv func(string) string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "manage",
		Short:        "Account administration",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML config file")

	// withAccounts opens the service for the duration of one command.
	withAccounts := func(c *cobra.Command, fn func(ctx context.Context, accts Accounts, out io.Writer) error) error {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		accts, closeFn, err := open(ctx, configPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, accts, c.OutOrStdout())
	}

	cmd.AddCommand(
		createUserCmd(withAccounts),
		createSuperuserCmd(withAccounts, getenv),
		changePasswordCmd(withAccounts),
		listUsersCmd(withAccounts),
	)
	return cmd
}

type runner func(c *cobra.Command, fn func(ctx context.Context, accts Accounts, out io.Writer) error) error

func openAccounts(ctx context.Context, configPath string) (Accounts, func(), error) {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return nil, nil, err
	}
	app.ConfigureLogging(cfg.Logging)

	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	passwords, err := app.NewPasswords(cfg.Password)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return account.NewService(postgres.NewAccountRepo(db), passwords), closer(db), nil
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
