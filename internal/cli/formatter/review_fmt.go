package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/aggregate"
	"github.com/alexanderramin/daylog/internal/domain"
)

const rateBarWidth = 10

// FormatReview renders the retrospective panels computed over the archive.
func FormatReview(r aggregate.Review) string {
	var b strings.Builder

	b.WriteString(Header("Health") + "\n")
	h := r.Health
	if h.SleepRecords > 0 {
		b.WriteString(fmt.Sprintf("  Avg sleep       %.1fh %s\n", h.AvgSleepHours, Dim(fmt.Sprintf("over %d records", h.SleepRecords))))
	} else {
		b.WriteString("  Avg sleep       " + Dim("no data") + "\n")
	}
	b.WriteString(fmt.Sprintf("  Exercise days   %d/%d %s\n", h.ExerciseDays, aggregate.ExerciseWindowDays, Dim("last 7 days")))
	b.WriteString(fmt.Sprintf("  Supplements     %s\n", RenderProgress(h.SupplementRate, rateBarWidth)))
	b.WriteString(fmt.Sprintf("  Body care       %s\n", RenderProgress(h.BodycareRate, rateBarWidth)))

	b.WriteString("\n" + Header("Study") + "\n")
	b.WriteString(fmt.Sprintf("  Total %s across %d days\n", Bold(FormatMinutes(r.Study.TotalMinutes)), r.Study.Days))
	for _, s := range r.Study.BySubject {
		b.WriteString(fmt.Sprintf("  %-16s %s\n", s.Label, FormatMinutes(s.Amount)))
	}

	b.WriteString("\n" + Header("Housework") + "\n")
	hw := r.Housework
	b.WriteString(fmt.Sprintf("  %s points over %d records %s\n",
		Bold(fmt.Sprintf("%.0f", hw.TotalPoints)), hw.Records, Dim(fmt.Sprintf("avg %.1f", hw.AvgPoints))))
	if len(hw.Chores) > 0 {
		parts := make([]string, len(hw.Chores))
		for i, c := range hw.Chores {
			parts[i] = fmt.Sprintf("%s×%d", c.Label, c.Count)
		}
		b.WriteString("  " + Dim(strings.Join(parts, "  ")) + "\n")
	}

	b.WriteString("\n" + Header("Finance "+r.Finance.Month) + "\n")
	f := r.Finance
	b.WriteString(fmt.Sprintf("  Expense  %s %s\n", StyleRed.Render(f.Expense.StringFixed(2)), Dim(fmt.Sprintf("%d days, avg %s/day", f.ExpenseDays, f.AvgDailyExpense.StringFixed(2)))))
	b.WriteString(fmt.Sprintf("  Income   %s %s\n", StyleGreen.Render(f.Income.StringFixed(2)), Dim(fmt.Sprintf("%d days", f.IncomeDays))))
	if len(f.ByCategory) > 0 {
		rows := make([][]string, len(f.ByCategory))
		for i, m := range f.ByCategory {
			rows[i] = []string{m.Label, m.Expense.StringFixed(2), m.Income.StringFixed(2)}
		}
		b.WriteString(indent(RenderTable([]string{"CATEGORY", "EXPENSE", "INCOME"}, rows), "  "))
	}

	b.WriteString("\n" + Header("Entertainment") + "\n")
	if len(r.Entertainment) == 0 {
		b.WriteString("  " + Dim("no data") + "\n")
	}
	for _, e := range r.Entertainment {
		b.WriteString(fmt.Sprintf("  %-16s %d\n", e.Label, e.Count))
	}

	if errs := FormatReadErrors(r.Errors); errs != "" {
		b.WriteString("\n" + errs)
	}
	return RenderBox("Review", b.String())
}

// FormatOverview renders the "today so far" panel.
func FormatOverview(o aggregate.Overview) string {
	var b strings.Builder
	total := 0
	for _, c := range domain.Categories() {
		n := o.Counts[c]
		if n == 0 {
			continue
		}
		total += n
		b.WriteString(fmt.Sprintf("  %s %s %d\n", CategoryDot(c), c.Label(), n))
	}
	if total == 0 {
		b.WriteString("  " + Dim("Nothing logged yet today.") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Study      %s\n", FormatMinutes(o.StudyMinutes)))
	b.WriteString(fmt.Sprintf("  Exercise   %s\n", FormatMinutes(o.ExerciseMinutes)))
	b.WriteString(fmt.Sprintf("  Housework  %.0f pts\n", o.HouseworkScore))
	b.WriteString(fmt.Sprintf("  Spent      %s\n", o.Expense.StringFixed(2)))
	b.WriteString(FormatReadErrors(o.Errors))
	return RenderBox("Today "+string(o.Today), b.String())
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
