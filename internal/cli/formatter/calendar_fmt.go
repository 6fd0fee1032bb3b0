package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/daylog/internal/aggregate"
	"github.com/charmbracelet/lipgloss"
)

const calendarCellWidth = 7

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// mondayIndex maps time.Weekday onto a Monday-first column.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// FormatCalendar renders a Monday-first month grid. Each cell shows the day
// number and how many categories have records; "*" marks important dates.
func FormatCalendar(cal aggregate.CalendarMonth) string {
	var b strings.Builder
	cell := lipgloss.NewStyle().Width(calendarCellWidth)

	for _, h := range weekdayHeaders {
		b.WriteString(cell.Render(StyleHeader.Render(h)))
	}
	b.WriteString("\n")

	if len(cal.Days) > 0 {
		b.WriteString(strings.Repeat(" ", calendarCellWidth*mondayIndex(cal.Days[0].Weekday)))
	}
	for _, d := range cal.Days {
		b.WriteString(cell.Render(calendarCell(d)))
		if mondayIndex(d.Weekday) == 6 {
			b.WriteString("\n")
		}
	}
	if len(cal.Days) > 0 && mondayIndex(cal.Days[len(cal.Days)-1].Weekday) != 6 {
		b.WriteString("\n")
	}

	var notes []string
	for _, d := range cal.Days {
		if d.Important != nil {
			notes = append(notes, fmt.Sprintf("  %s %s %s %s",
				StyleYellow.Render("*"), d.Date, Dim(string(d.Important.Type)), d.Important.Label))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n" + strings.Join(notes, "\n") + "\n")
	}
	b.WriteString(FormatReadErrors(cal.Errors))

	return RenderBox(cal.Month, b.String())
}

func calendarCell(d aggregate.CalendarDay) string {
	num := fmt.Sprintf("%2s", strings.TrimLeft(string(d.Date)[8:], "0"))
	if d.Today {
		num = StyleToday.Render(num)
	} else if len(d.Categories) == 0 {
		num = Dim(num)
	}

	mark := " "
	if n := len(d.Categories); n > 0 {
		mark = StyleGreen.Render(fmt.Sprint(n))
		if n > 9 {
			mark = StyleGreen.Render("+")
		}
	}
	imp := " "
	if d.Important != nil {
		imp = StyleYellow.Render("*")
	}
	return num + mark + imp
}

// FormatDay lists everything recorded on one date, archived first.
func FormatDay(d aggregate.DayDetail, today string) string {
	var b strings.Builder
	if d.Important != nil {
		b.WriteString(fmt.Sprintf("%s %s %s\n\n", StyleYellow.Render("*"), Dim(string(d.Important.Type)), Bold(d.Important.Label)))
	}

	cats := d.Categories()
	if len(cats) == 0 {
		b.WriteString(Dim("Nothing recorded.") + "\n")
	}
	for _, c := range cats {
		b.WriteString(CategoryBadge(c) + "\n")
		for _, rec := range d.Archived[c] {
			b.WriteString(fmt.Sprintf("  %s  %s\n", ClockTime(rec.Timestamp), FormatValues(c, rec)))
		}
		for _, rec := range d.Pending[c] {
			b.WriteString(fmt.Sprintf("  %s  %s %s\n", ClockTime(rec.Timestamp), FormatValues(c, rec), StyleYellow.Render("(pending)")))
		}
	}
	b.WriteString(FormatReadErrors(d.Errors))

	title := string(d.Date)
	if string(d.Date) == today {
		title += " (today)"
	}
	return RenderBox(title, b.String())
}
