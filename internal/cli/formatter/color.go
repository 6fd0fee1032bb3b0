package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorAqua   = lipgloss.Color("#689d6a")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleAqua   = lipgloss.NewStyle().Foreground(ColorAqua)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleToday  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true).Underline(true)
)

// categoryStyles groups categories into families so a calendar row reads at
// a glance: health green, meals yellow, productive blue, leisure purple.
var categoryStyles = map[domain.Category]lipgloss.Style{
	domain.CategorySleep:         StyleGreen,
	domain.CategoryNap:           StyleGreen,
	domain.CategoryExercise:      StyleGreen,
	domain.CategorySupplements:   StyleAqua,
	domain.CategoryBodycare:      StyleAqua,
	domain.CategoryBreakfast:     StyleYellow,
	domain.CategoryLunch:         StyleYellow,
	domain.CategoryDinner:        StyleYellow,
	domain.CategoryWork:          StyleBlue,
	domain.CategoryStudy:         StyleBlue,
	domain.CategoryHousework:     StyleBlue,
	domain.CategoryFinance:       StyleRed,
	domain.CategoryGame:          StylePurple,
	domain.CategoryEntertainment: StylePurple,
}

// CategoryStyle returns the style used for c.
func CategoryStyle(c domain.Category) lipgloss.Style {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return StyleDim
}

// CategoryBadge renders the category label in its family color.
func CategoryBadge(c domain.Category) string {
	return CategoryStyle(c).Render(c.Label())
}

// CategoryDot renders a single colored marker for c.
func CategoryDot(c domain.Category) string {
	return CategoryStyle(c).Render("●")
}

// OutcomeIndicator returns a colored result marker such as "✔ success".
func OutcomeIndicator(o events.Outcome) string {
	if o == events.OutcomeError {
		return StyleRed.Render("✖ " + string(o))
	}
	return StyleGreen.Render("✔ " + string(o))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Warn renders a yellow warning line.
func Warn(text string) string {
	return StyleYellow.Render("  WARNING: " + text)
}
