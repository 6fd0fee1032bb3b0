package formatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/daylog/internal/archive"
	"github.com/alexanderramin/daylog/internal/backup"
	"github.com/alexanderramin/daylog/internal/domain"
)

// FormatSyncStatus renders the backup connection panel.
func FormatSyncStatus(s backup.Status) string {
	var b strings.Builder
	if !s.Connected {
		b.WriteString(StyleDim.Render("○ Not connected") + "\n")
		b.WriteString(Dim("Run 'daylog sync connect' to back up to a private gist.") + "\n")
	} else {
		b.WriteString(StyleGreen.Render("● Connected") + " as " + Bold(s.Account.DisplayName()))
		if s.Account.Login != "" && s.Account.Login != s.Account.DisplayName() {
			b.WriteString(" " + Dim("@"+s.Account.Login))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Document   %s\n", Dim(s.DocumentID)))
		last := Dim("never")
		if s.LastSync != nil {
			last = s.LastSync.Local().Format("2006-01-02 15:04:05")
		}
		b.WriteString(fmt.Sprintf("  Last sync  %s\n", last))
	}
	b.WriteString(fmt.Sprintf("  Records    %d\n", s.RecordCount))
	return RenderBox("Sync", b.String())
}

// FormatArchiveResult summarizes one archival pass, or its failure.
func FormatArchiveResult(res archive.Result, err error) string {
	var b strings.Builder
	if res.Total() == 0 && err == nil {
		return Dim("Nothing pending to archive.") + "\n"
	}
	if res.Total() > 0 {
		days := make([]string, len(res.Buckets))
		for i, d := range res.Buckets {
			days[i] = string(d)
		}
		b.WriteString(fmt.Sprintf("Archived %s from %s\n",
			Bold(plural(res.Total(), "record")), strings.Join(days, ", ")))
		for _, c := range domain.Categories() {
			if m, ok := res.Moved[c]; ok {
				b.WriteString(fmt.Sprintf("  %s %s %d\n", CategoryDot(c), c.Label(), m.Total()))
			}
		}
	}
	var pass *archive.PassError
	if errors.As(err, &pass) {
		cats := make([]string, 0, len(pass.Failed))
		for c := range pass.Failed {
			cats = append(cats, string(c))
		}
		sort.Strings(cats)
		for _, c := range cats {
			b.WriteString(StyleRed.Render(fmt.Sprintf("  ✖ %s: %v", c, pass.Failed[domain.Category(c)])) + "\n")
		}
	}
	return b.String()
}

// FormatNextArchive renders the countdown line of the watch view.
func FormatNextArchive(next, now time.Time) string {
	if next.IsZero() {
		return Dim("No archival scheduled.")
	}
	return fmt.Sprintf("Next archive %s %s", Bold(next.Format("Mon 15:04:05")), Dim("in "+Countdown(next.Sub(now))))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
