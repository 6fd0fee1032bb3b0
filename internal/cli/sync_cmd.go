package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/spf13/cobra"
)

// TokenEnv names the variable read when --token is not given.
const TokenEnv = "DAYLOG_GITHUB_TOKEN"

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Back up to and restore from a private GitHub gist",
	}

	cmd.AddCommand(
		newSyncConnectCmd(app),
		newSyncUploadCmd(app),
		newSyncDownloadCmd(app),
		newSyncStatusCmd(app),
		newSyncDisconnectCmd(app),
	)

	return cmd
}

func newSyncConnectCmd(app *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Verify a token and find or create the backup gist",
		Long: "Verify a GitHub personal access token with the gist scope, then find the\n" +
			"backup gist or create an empty one. The token comes from --token, " + TokenEnv + ",\n" +
			"or an interactive prompt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv(TokenEnv)
			}
			if token == "" && app.interactive() {
				t, err := app.prompter().Secret("GitHub personal access token (gist scope)")
				if err != nil {
					return err
				}
				token = t
			}
			if token == "" {
				return fmt.Errorf("no token given; use --token or set %s", TokenEnv)
			}

			if warning := backup.CredentialWarning(token); warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Warn(warning))
				if app.interactive() {
					ok, err := app.prompter().Confirm("Use this token anyway?", warning)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
				}
			}

			var state struct{ login, doc string }
			err := withProgress(cmd, app, "Connecting", func(ctx context.Context) error {
				s, err := app.Sync.Connect(ctx, token)
				state.login, state.doc = s.Account.DisplayName(), s.DocumentID
				return err
			})
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected as %s. Backup gist %s\n",
				formatter.Bold(state.login), formatter.Dim(state.doc))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub personal access token")

	return cmd
}

func newSyncUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Overwrite the remote backup with local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withProgress(cmd, app, "Uploading", app.Sync.Upload); err != nil {
				return friendly(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("✔")+" Backup uploaded.")
			return nil
		},
	}
}

func newSyncDownloadCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Replace local data with the remote backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Ask before the spinner takes over the terminal.
			ok, err := confirmReplace(app, yes, "Replace all local data with the remote backup?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), backup.Message(backup.ErrDownloadDeclined))
				return nil
			}
			err = withProgress(cmd, app, "Downloading", func(ctx context.Context) error {
				return app.Sync.Download(ctx, backup.Confirmed)
			})
			if errors.Is(err, backup.ErrDownloadDeclined) {
				fmt.Fprintln(cmd.OutOrStdout(), backup.Message(err))
				return nil
			}
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("✔")+" Backup restored.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newSyncStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backup connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Sync.Status(commandContext(cmd))
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSyncStatus(st))
			return nil
		},
	}
}

func newSyncDisconnectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the token and backup gist; local data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sync.Disconnect(commandContext(cmd)); err != nil {
				return friendly(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Disconnected. Local data is kept.")
			return nil
		},
	}
}

// withProgress runs fn, animating a spinner fed by sync progress events when
// a terminal is attached.
func withProgress(cmd *cobra.Command, app *App, label string, fn func(ctx context.Context) error) error {
	ctx := commandContext(cmd)
	if !app.interactive() || app.Feed == nil {
		return fn(ctx)
	}

	spin := formatter.NewSpinner(cmd.ErrOrStderr(), label+"...")
	spin.Start()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case e := <-app.Feed:
				if e.Kind == events.KindSyncProgress {
					spin.SetMessage(fmt.Sprintf("%s %3d%% %s", label, e.Percent, e.Detail))
				}
			}
		}
	}()

	err := fn(ctx)
	close(done)
	spin.Stop()
	return err
}
