package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive every pending record now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Archive.RunArchivalNow(commandContext(cmd))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatArchiveResult(res, err))
			return err
		},
	}
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Summarize what has been logged today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := app.Insights.Overview(commandContext(cmd))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatOverview(o))
			if app.Archive != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNextArchive(app.Archive.NextArchive(), app.now()))
			}
			return nil
		},
	}
}

func newCalendarCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show which days have records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := app.Insights.Calendar(commandContext(cmd), month)
			if err != nil {
				return fmt.Errorf("invalid --month %q: %w", month, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCalendar(cal))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default current)")

	return cmd
}

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show everything recorded on one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.Store.Today()
			day := today
			if len(args) == 1 {
				b, err := domain.ParseBucket(args[0])
				if err != nil {
					return err
				}
				day = b
			}
			detail, err := app.Insights.Day(commandContext(cmd), day)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDay(detail, string(today)))
			return nil
		},
	}
}

func newReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Show health, study, housework, finance and leisure rollups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReview(app.Insights.Review(commandContext(cmd))))
			return nil
		},
	}
}

func newImportantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "important",
		Short: "Manage important dates shown on the calendar",
	}

	cmd.AddCommand(
		newImportantAddCmd(app),
		newImportantListCmd(app),
		newImportantRemoveCmd(app),
	)

	return cmd
}

// importantTypeFlag is a pflag.Value restricted to the known date types.
type importantTypeFlag domain.ImportantDateType

var _ pflag.Value = (*importantTypeFlag)(nil)

func (f *importantTypeFlag) String() string { return string(*f) }
func (f *importantTypeFlag) Type() string   { return "type" }

func (f *importantTypeFlag) Set(s string) error {
	for _, t := range domain.ImportantDateTypes {
		if string(t) == strings.ToLower(s) {
			*f = importantTypeFlag(t)
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(importantTypeNames(), ", "))
}

func importantTypeNames() []string {
	names := make([]string, len(domain.ImportantDateTypes))
	for i, t := range domain.ImportantDateTypes {
		names[i] = string(t)
	}
	return names
}

func newImportantAddCmd(app *App) *cobra.Command {
	var label string
	typ := importantTypeFlag(domain.ImportantOther)

	cmd := &cobra.Command{
		Use:   "add <YYYY-MM-DD>",
		Short: "Mark a date, replacing any existing mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := domain.ParseBucket(args[0])
			if err != nil {
				return err
			}
			d, err := app.Store.SetImportantDate(commandContext(cmd), day, typ.String(), label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as %s: %s\n", day, d.Type, d.Label)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "What happens on the date")
	cmd.Flags().Var(&typ, "type", "One of "+strings.Join(importantTypeNames(), ", "))
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func newImportantListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List important dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := app.Store.ImportantDates(commandContext(cmd))
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No important dates.")
				return nil
			}
			days := make([]domain.DateBucket, 0, len(dates))
			for d := range dates {
				days = append(days, d)
			}
			domain.SortBuckets(days)

			today := app.Store.Today()
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				imp := dates[d]
				rows = append(rows, []string{
					string(d),
					formatter.RelativeDay(d, today),
					formatter.StylePurple.Render(string(imp.Type)),
					imp.Label,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"DATE", "WHEN", "TYPE", "LABEL"}, rows))
			return nil
		},
	}
}

func newImportantRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <YYYY-MM-DD>",
		Aliases: []string{"rm"},
		Short:   "Remove the mark on a date",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := domain.ParseBucket(args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteImportantDate(commandContext(cmd), day); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", day)
			return nil
		},
	}
}
