package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full store as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Store.ExportAll(commandContext(cmd))
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			data = append(data, '\n')

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", snap.RecordCount(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "File to write (default stdout)")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole store with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}
			snap, err := backup.DecodeJSON(data)
			if err != nil {
				return fmt.Errorf("decoding import %s: %w", args[0], err)
			}

			ok, err := confirmReplace(app, yes, fmt.Sprintf("Replace all local data with %d records from %s?", snap.RecordCount(), args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled. Local data is unchanged.")
				return nil
			}

			if err := app.Store.ReplaceAll(commandContext(cmd), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records.\n", snap.RecordCount())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

// confirmReplace asks before overwriting local data. Without a terminal the
// answer is no unless yes was given.
func confirmReplace(app *App, yes bool, title string) (bool, error) {
	if yes {
		return true, nil
	}
	if !app.interactive() {
		return false, nil
	}
	return app.prompter().Confirm(title, "Every local record, pending and archived, is overwritten. This cannot be undone.")
}
