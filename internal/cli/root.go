package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "daylog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "daylog",
		Short:         "Daily activity log with nightly archival and gist backup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Archive == nil {
				return nil
			}
			// Catch-up failures are reported but never block the command.
			if err := app.Archive.Start(commandContext(cmd)); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Warn("catch-up archival: "+err.Error()))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Archive != nil {
				app.Archive.Stop()
			}
		},
	}

	root.AddCommand(
		newAddCmd(app),
		newCategoriesCmd(),
		newPendingCmd(app),
		newHistoryCmd(app),
		newArchiveCmd(app),
		newTodayCmd(app),
		newCalendarCmd(app),
		newDayCmd(app),
		newReviewCmd(app),
		newImportantCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newSyncCmd(app),
		newRunCmd(app),
	)

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// syncError carries a sync failure with the sentence shown to the user.
type syncError struct {
	err error
}

func (e *syncError) Error() string { return backup.Message(e.err) }
func (e *syncError) Unwrap() error { return e.err }

func friendly(err error) error {
	if err == nil {
		return nil
	}
	var se *syncError
	if errors.As(err, &se) {
		return err
	}
	return &syncError{err: err}
}
