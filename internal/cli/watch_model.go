package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/daylog/internal/aggregate"
	"github.com/alexanderramin/daylog/internal/archive"
	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const feedLimit = 8

type watchKeyMap struct {
	Archive key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Archive, k.Refresh, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Archive: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive now")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type (
	tickMsg     time.Time
	feedMsg     events.Event
	overviewMsg aggregate.Overview
	archivedMsg struct {
		res archive.Result
		err error
	}
)

// watchModel is the long-running view: it keeps the archival timers alive,
// counts down to the next cutoff and shows events as they happen.
type watchModel struct {
	app      *App
	ctx      context.Context
	keys     watchKeyMap
	help     help.Model
	spinner  spinner.Model
	now      time.Time
	next     time.Time
	state    archive.State
	overview aggregate.Overview
	feed     []string
	width    int
	quitting bool
}

func newWatchModel(ctx context.Context, app *App) watchModel {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(formatter.StylePurple))
	m := watchModel{
		app:     app,
		ctx:     ctx,
		keys:    defaultWatchKeys(),
		help:    help.New(),
		spinner: sp,
		now:     app.now(),
	}
	m.next = app.Archive.NextArchive()
	m.state = app.Archive.State()
	return m
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick(), m.waitForEvent(), m.loadOverview())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) waitForEvent() tea.Cmd {
	if m.app.Feed == nil {
		return nil
	}
	feed := m.app.Feed
	return func() tea.Msg {
		e, ok := <-feed
		if !ok {
			return nil
		}
		return feedMsg(e)
	}
}

func (m watchModel) loadOverview() tea.Cmd {
	return func() tea.Msg {
		return overviewMsg(m.app.Insights.Overview(m.ctx))
	}
}

func (m watchModel) archiveNow() tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Archive.RunArchivalNow(m.ctx)
		return archivedMsg{res: res, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Archive):
			m.state = archive.StateArchiving
			return m, m.archiveNow()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadOverview()
		}
		return m, nil

	case tickMsg:
		m.now = m.app.now()
		var cmds []tea.Cmd
		if m.app.Archive.Resync() {
			cmds = append(cmds, m.loadOverview())
		}
		m.next = m.app.Archive.NextArchive()
		m.state = m.app.Archive.State()
		return m, tea.Batch(append(cmds, tick())...)

	case feedMsg:
		e := events.Event(msg)
		m.push(m.describe(e))
		m.next = m.app.Archive.NextArchive()
		return m, tea.Batch(m.loadOverview(), m.waitForEvent())

	case archivedMsg:
		m.state = m.app.Archive.State()
		m.next = m.app.Archive.NextArchive()
		if msg.err != nil {
			m.push(formatter.StyleRed.Render("archive failed: " + msg.err.Error()))
		}
		return m, m.loadOverview()

	case overviewMsg:
		m.overview = aggregate.Overview(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) push(line string) {
	stamp := formatter.Dim(m.app.now().Format("15:04:05"))
	m.feed = append(m.feed, stamp+" "+line)
	if len(m.feed) > feedLimit {
		m.feed = m.feed[len(m.feed)-feedLimit:]
	}
}

func (m watchModel) describe(e events.Event) string {
	switch e.Kind {
	case events.KindAppend:
		return fmt.Sprintf("logged %s", formatter.CategoryBadge(e.Category))
	case events.KindArchiveDue:
		return formatter.StyleYellow.Render(fmt.Sprintf("archival of %s is due soon; log anything missing", e.Bucket))
	case events.KindArchived:
		total := 0
		for _, n := range e.Summary.Moved {
			total += n
		}
		line := fmt.Sprintf("archived %d record(s) from %d day(s)", total, len(e.Summary.Buckets))
		if len(e.Summary.Failed) > 0 {
			return formatter.StyleRed.Render(fmt.Sprintf("%s, %d categor(y|ies) failed", line, len(e.Summary.Failed)))
		}
		return formatter.StyleGreen.Render(line)
	case events.KindSyncResult:
		return formatter.OutcomeIndicator(e.Outcome) + " " + e.Detail
	}
	return e.String()
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(formatter.Header("daylog") + "\n\n")
	b.WriteString(formatter.FormatNextArchive(m.next, m.now) + "\n")
	if m.state == archive.StateArchiving {
		b.WriteString(m.spinner.View() + " " + formatter.Dim("archiving...") + "\n")
	}
	b.WriteString("\n")

	if m.overview.Today != "" {
		b.WriteString(formatter.FormatOverview(m.overview) + "\n")
	}

	if len(m.feed) > 0 {
		b.WriteString("\n" + formatter.Header("Events") + "\n")
		for _, line := range m.feed {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
