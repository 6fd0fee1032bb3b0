package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/cli/formatter"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Prompter collects input from the person at the terminal.
type Prompter interface {
	Record(c domain.Category) (map[string]any, error)
	Confirm(title, description string) (bool, error)
	Secret(title string) (string, error)
}

// daylogHuhTheme returns a huh theme matching the formatter palette.
func daylogHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

type huhPrompter struct{}

// Record asks for every declared field of c. Blank inputs are left out so
// they default-fill on read.
func (huhPrompter) Record(c domain.Category) (map[string]any, error) {
	schema := c.Schema()
	raw := make([]string, len(schema.Fields))
	flags := make([]bool, len(schema.Fields))

	fields := make([]huh.Field, 0, len(schema.Fields))
	for i, f := range schema.Fields {
		if f.Type == domain.FieldBool {
			fields = append(fields, huh.NewConfirm().Title(f.Name).Value(&flags[i]))
			continue
		}
		fields = append(fields, huh.NewInput().
			Title(fieldTitle(f)).
			Placeholder(fieldPlaceholder(f)).
			Value(&raw[i]).
			Validate(fieldValidator(f)))
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(c.Label())).
		WithTheme(daylogHuhTheme()).
		WithShowHelp(false)
	if err := form.Run(); err != nil {
		return nil, err
	}
	return collectValues(schema, raw, flags)
}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).WithTheme(daylogHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func (huhPrompter) Secret(title string) (string, error) {
	var s string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&s).
			Validate(func(v string) error {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("required")
				}
				return nil
			}),
	)).WithTheme(daylogHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func fieldTitle(f domain.Field) string {
	switch f.Type {
	case domain.FieldTextList:
		return f.Name + " (comma separated)"
	case domain.FieldItemList, domain.FieldObject:
		return f.Name + " (JSON)"
	}
	return f.Name
}

func fieldPlaceholder(f domain.Field) string {
	switch f.Type {
	case domain.FieldNumber:
		return "0"
	case domain.FieldTextList:
		return "first, second"
	case domain.FieldItemList:
		return `[{"amount": 12.5, "category": "food"}]`
	case domain.FieldObject:
		return "{}"
	}
	return ""
}

func fieldValidator(f domain.Field) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := domain.ParseValue(f, s)
		return err
	}
}

// collectValues converts raw form input into record values, skipping blank
// inputs. flags holds the answers of boolean fields by index.
func collectValues(schema domain.Schema, raw []string, flags []bool) (map[string]any, error) {
	values := make(map[string]any, len(schema.Fields))
	for i, f := range schema.Fields {
		if f.Type == domain.FieldBool {
			values[f.Name] = flags[i]
			continue
		}
		if strings.TrimSpace(raw[i]) == "" {
			continue
		}
		v, err := domain.ParseValue(f, raw[i])
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

// parseAssignments turns repeated name=value flags into record values. Names
// the schema does not declare are passed through so validation names them.
func parseAssignments(c domain.Category, sets []string) (map[string]any, error) {
	values := make(map[string]any, len(sets))
	schema := c.Schema()
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", domain.ErrInvalidRecord, s)
		}
		f, known := schema.Lookup(name)
		if !known {
			values[name] = raw
			continue
		}
		v, err := domain.ParseValue(f, raw)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}
