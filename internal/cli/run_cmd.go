package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/daylog/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newRunCmd(app *App) *cobra.Command {
	var headless bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stay running to archive at the nightly cutoff",
		Long: "Stay running so pending records are archived at the nightly cutoff. On a terminal\n" +
			"this shows a live view; otherwise, or with --headless, events are printed as lines.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			ctx := commandContext(cmd)
			if headless || !app.interactive() {
				return runHeadless(ctx, app, cmd.OutOrStdout(), interval)
			}
			p := tea.NewProgram(newWatchModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err := p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Print events as lines instead of the live view")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "How often to check for a cutoff missed during sleep")

	return cmd
}

// runHeadless prints events until ctx is cancelled. Every interval it checks
// whether a cutoff passed while timers were suspended, and reports the next
// cutoff whenever it moves.
func runHeadless(ctx context.Context, app *App, w io.Writer, interval time.Duration) error {
	next := app.Archive.NextArchive()
	fmt.Fprintln(w, formatter.FormatNextArchive(next, app.now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	feed := app.Feed
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			app.Archive.Resync()
			if n := app.Archive.NextArchive(); !n.Equal(next) {
				next = n
				fmt.Fprintln(w, formatter.FormatNextArchive(next, app.now()))
			}
		case e, ok := <-feed:
			if !ok {
				feed = nil
				continue
			}
			fmt.Fprintf(w, "%s %s\n", app.now().Format("15:04:05"), e)
		}
	}
}
