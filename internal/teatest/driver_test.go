package teatest

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type bumpMsg struct{}

type counter struct {
	n     int
	width int
}

func (c counter) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return bumpMsg{} },
		tea.Tick(time.Hour, func(time.Time) tea.Msg { return bumpMsg{} }),
	)
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case bumpMsg:
		c.n++
	case tea.KeyMsg:
		switch msg.String() {
		case "+":
			return c, func() tea.Msg { return bumpMsg{} }
		case "q":
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c counter) View() string {
	return fmt.Sprintf("count=%d width=%d", c.n, c.width)
}

func TestDriver_RunsImmediateCommandsAndSkipsBlockingOnes(t *testing.T) {
	d := New(t, counter{}, WithSize(80, 24))
	d.DrainInit()

	d.AssertViewContains("count=1", "width=80")
}

func TestDriver_PressChainsCommands(t *testing.T) {
	d := New(t, counter{})
	d.Press("+")
	d.Press("+")

	assert.Equal(t, "count=2 width=0", d.View())
}

func TestDriver_QuitStopsFurtherInput(t *testing.T) {
	d := New(t, counter{})
	d.Press("q")
	assert.True(t, d.Quitting)

	d.Press("+")
	assert.Equal(t, 0, d.Model.(counter).n)
}
