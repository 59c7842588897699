package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ignite/coreapp/internal/service/account"
)

// passwordEnv supplies the createsuperuser password non-interactively.
const passwordEnv = "MANAGE_PASSWORD"

func createUserCmd(run runner) *cobra.Command {
	var (
		email, name, password string
		staff                 bool
	)

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an account",
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, func(ctx context.Context, accts Accounts, out io.Writer) error {
				p := account.CreateParams{Email: email, Name: name, IsStaff: staff}
				if password != "" {
					p.Password = &password
				}
				a, err := accts.CreateUser(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created account %d (%s)\n", a.ID, a.Email)
				if p.Password == nil {
					fmt.Fprintln(out, "No password set; use changepassword before logging in.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password; omitted leaves the account unable to log in")
	cmd.Flags().BoolVar(&staff, "staff", false, "allow admin API access")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func createSuperuserCmd(run runner, getenv func(string) string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account with every permission",
		RunE: func(c *cobra.Command, _ []string) error {
			if password == "" {
				password = getenv(passwordEnv)
			}
			if password == "" {
				return fmt.Errorf("a password is required (--password or %s)", passwordEnv)
			}
			return run(c, func(ctx context.Context, accts Accounts, out io.Writer) error {
				a, err := accts.CreateSuperuser(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Superuser %s created (id %d)\n", a.Email, a.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (default $"+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func changePasswordCmd(run runner) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "changepassword",
		Short: "Set an account's password",
		RunE: func(c *cobra.Command, _ []string) error {
			if password == "" {
				return errors.New("--password must not be empty")
			}
			return run(c, func(ctx context.Context, accts Accounts, out io.Writer) error {
				a, err := accts.GetByEmail(ctx, email)
				if errors.Is(err, account.ErrNotFound) {
					return fmt.Errorf("no account with email %s", email)
				}
				if err != nil {
					return err
				}
				if err := accts.SetPassword(ctx, a.ID, &password); err != nil {
					return err
				}
				fmt.Fprintf(out, "Password changed for %s\n", a.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "new password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func listUsersCmd(run runner) *cobra.Command {
	var staffOnly bool

	cmd := &cobra.Command{
		Use:   "listusers",
		Short: "List accounts ordered by id",
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, func(ctx context.Context, accts Accounts, out io.Writer) error {
				list, total, err := accts.List(ctx, account.ListFilter{StaffOnly: staffOnly})
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tACTIVE\tSTAFF\tSUPERUSER")
				for _, a := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\t%t\n", a.ID, a.Email, a.Name, a.IsActive, a.IsStaff, a.IsSuperuser)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Total: %d\n", total)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&staffOnly, "staff", false, "only staff accounts")
	return cmd
}
