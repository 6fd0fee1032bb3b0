package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	var sets []string
	var rawJSON string

	cmd := &cobra.Command{
		Use:   "add <category>",
		Short: "Log a record for today",
		Long: "Log a record for today. Values come from --set name=value flags, a --json object,\n" +
			"or an interactive form when neither is given. Run 'daylog categories' for field names.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}

			values := map[string]any{}
			switch {
			case rawJSON != "":
				if err := json.Unmarshal([]byte(rawJSON), &values); err != nil {
					return fmt.Errorf("%w: --json: %v", domain.ErrInvalidRecord, err)
				}
				if len(sets) > 0 {
					extra, err := parseAssignments(c, sets)
					if err != nil {
						return err
					}
					for k, v := range extra {
						values[k] = v
					}
				}
			case len(sets) > 0:
				if values, err = parseAssignments(c, sets); err != nil {
					return err
				}
			case app.interactive():
				if values, err = app.prompter().Record(c); err != nil {
					return err
				}
			default:
				return errors.New("no values given; use --set name=value or --json")
			}

			rec, err := app.Store.AppendPending(commandContext(cmd), c, values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s at %s %s\n",
				formatter.CategoryBadge(c), formatter.ClockTime(rec.Timestamp), formatter.TruncID(rec.ID))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringVar(&rawJSON, "json", "", "Field values as a JSON object")

	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSchema())
			return nil
		},
	}
}

func newPendingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending [category]",
		Short: "Show records waiting for tonight's archival",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := categoriesArg(args)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			today := app.Store.Today()

			var rows []formatter.RecordRow
			stale := map[domain.DateBucket]bool{}
			for _, c := range cats {
				log, err := app.Store.ReadPending(ctx, c)
				if err != nil {
					return err
				}
				rows = appendRows(rows, c, log, nil)
				for _, b := range log.Buckets() {
					if b != today {
						stale[b] = true
					}
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatRecords(rows, today))
			if len(stale) > 0 {
				fmt.Fprintln(out, formatter.Warn(fmt.Sprintf(
					"%d earlier day(s) still pending; run 'daylog archive' to file them", len(stale))))
			}
			return nil
		},
	}
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history [category]",
		Short: "Show archived records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := categoriesArg(args)
			if err != nil {
				return err
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			ctx := commandContext(cmd)
			today := app.Store.Today()

			var window map[domain.DateBucket]bool
			if days > 0 {
				window = map[domain.DateBucket]bool{}
				for _, b := range domain.LastNDays(today, days) {
					window[b] = true
				}
			}

			var rows []formatter.RecordRow
			for _, c := range cats {
				log, err := app.Store.ReadArchived(ctx, c)
				if err != nil {
					return err
				}
				rows = appendRows(rows, c, log, window)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecords(rows, today))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Days back from today to include (0 for all)")

	return cmd
}

// categoriesArg resolves an optional category argument; none means all.
func categoriesArg(args []string) ([]domain.Category, error) {
	if len(args) == 0 {
		return domain.Categories(), nil
	}
	c, err := domain.ParseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return []domain.Category{c}, nil
}

// appendRows adds the records of log oldest day first. A nil window keeps
// every day.
func appendRows(rows []formatter.RecordRow, c domain.Category, log domain.CategoryLog, window map[domain.DateBucket]bool) []formatter.RecordRow {
	for _, b := range log.Buckets() {
		if window != nil && !window[b] {
			continue
		}
		for _, rec := range log[b] {
			rows = append(rows, formatter.RecordRow{Category: c, Bucket: b, Record: rec})
		}
	}
	return rows
}
