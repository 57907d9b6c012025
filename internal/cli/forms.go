package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// qraHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func qraHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateOptionalPercent accepts an empty string or a number in [0, 100].
func validateOptionalPercent(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number between 0 and 100")
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("percent must be between 0 and 100")
	}
	return nil
}

// percentInput returns a huh.Input for an optional percent field.
func percentInput(title, placeholder string, value *string) *huh.Input {
	if placeholder == "" {
		placeholder = "100"
	}
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value).
		Validate(validateOptionalPercent)
}

// activityEditForm collects the editable activity-level fields. Blank
// inputs leave the current value unchanged.
func activityEditForm(practice, nonRD, roles *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			percentInput("Practice Percent (blank to keep)", "", practice),
			percentInput("Non-R&D Time Percent (blank to keep)", "", nonRD),
			huh.NewInput().
				Title("Roles (comma separated, blank to keep)").
				Placeholder("Engineer, Researcher").
				Value(roles),
		),
	).WithTheme(qraHuhTheme()).WithShowHelp(false)
}
