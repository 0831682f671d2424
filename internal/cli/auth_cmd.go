package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/daoban/internal/cli/formatter"
	"github.com/alexanderramin/daoban/internal/domain"
)

var errMissingCredentials = errors.New("username and password are required (pass --username and --password, or run in a terminal)")

// completeCredentials prompts for missing fields when a terminal is
// attached.
func completeCredentials(app *App, title string, creds *domain.Credentials) error {
	if creds.Username != "" && creds.Password != "" {
		return nil
	}
	if !app.interactive() {
		return errMissingCredentials
	}
	if err := credentialsForm(title, creds).Run(); err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	return nil
}

// withSpinner runs fn behind a spinner when a terminal is attached.
func withSpinner(app *App, cmd *cobra.Command, message string, fn func() error) error {
	if !app.interactive() {
		return fn()
	}
	stop := formatter.StartSpinner(cmd.ErrOrStderr(), message)
	err := fn()
	stop()
	return err
}

func newLoginCmd(app *App) *cobra.Command {
	var creds domain.Credentials
	var noSync bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and pull your shift data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if err := completeCredentials(app, "Log in", &creds); err != nil {
				return err
			}

			session, err := app.Store.Login(ctx, creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Logged in as"), formatter.Bold(session.Username))

			if noSync {
				return nil
			}
			var doc domain.Document
			err = withSpinner(app, cmd, "Downloading shift data...", func() (err error) {
				doc, err = app.Store.LoadUserData(ctx)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSyncSummary(session.Username, doc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "Do not download user data after logging in")

	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var reg domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := domain.Credentials{Username: reg.Username, Password: reg.Password}
			if err := completeCredentials(app, "Create account", &creds); err != nil {
				return err
			}
			reg.Username, reg.Password = creds.Username, creds.Password

			if err := app.Store.Register(commandContext(cmd), reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				formatter.StyleGreen.Render("✔ Registered"),
				formatter.Bold(reg.Username),
				formatter.Dim("(run \"daoban login\" to start a session)"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&reg.Nickname, "nickname", "", "Display name")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear local data",
		RunE: func(cmd *cobra.Command, args []string) error {
			username := app.Store.Session().Username
			if err := app.Store.Logout(commandContext(cmd)); err != nil {
				return err
			}
			if username == "" {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No active session; local data cleared."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Logged out"), formatter.Bold(username))
			return nil
		},
	}
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending changes and pull the latest shift data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			session := app.Store.Session()
			if !session.IsAuthenticated() {
				return errNotLoggedIn
			}
			var doc domain.Document
			err := withSpinner(app, cmd, "Syncing...", func() (err error) {
				if err = app.Store.Flush(ctx); err != nil {
					return err
				}
				doc, err = app.Store.LoadUserData(ctx)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSyncSummary(session.Username, doc))
			return nil
		},
	}
}

var errNotLoggedIn = errors.New(`not logged in (run "daoban login")`)
