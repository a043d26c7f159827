package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}

			session, err := svc.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (#%d)\n", session.Username, session.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}

			svc.Logout()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return err
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}

			session, err := svc.CurrentSession()
			if errors.Is(err, domain.ErrNotSignedIn) {
				return fmt.Errorf("%w: run `srvctl login`", err)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", session.Username, session.ID)
			return err
		},
	}
}

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the stored session",
	}

	cmd.AddCommand(newSessionSetCmd(app))
	return cmd
}

func newSessionSetCmd(app *app) *cobra.Command {
	var username string
	var token string
	var id int64

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Install an already issued session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}

			session := domain.Session{Username: username, Token: token, ID: domain.UserID(id)}
			if err := svc.UseSession(session); err != nil {
				return fmt.Errorf("install session: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Session installed for %s (#%d)\n", session.Username, session.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username the token was issued to")
	cmd.Flags().StringVar(&token, "token", "", "session token")
	cmd.Flags().Int64Var(&id, "id", 0, "user id the token was issued to")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}
