// Package styles provides colour themes and styling for the TUI and the
// CLI progress table.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Progress thresholds used by ForPercent.
const (
	// ReachedAt is the consumed/target ratio at which a target counts as met.
	ReachedAt = 1.0

	// HalfwayAt is the ratio from which a nutrient is shown as on its way.
	HalfwayAt = 0.5
)

// Theme defines the colour palette.
type Theme struct {
	// Accent colours headings and the dashboard title.
	Accent lipgloss.Color

	// Heading colours table headers and section labels.
	Heading lipgloss.Color

	Text lipgloss.Color
	Dim  lipgloss.Color

	// Reached, Halfway and Behind colour a nutrient by how much of its
	// target has been consumed.
	Reached lipgloss.Color
	Halfway lipgloss.Color
	Behind  lipgloss.Color

	// Untargeted colours nutrients that were logged but have no target.
	Untargeted lipgloss.Color

	Alert lipgloss.Color
	Frame lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#40A02B"), // leaf
		Heading:    lipgloss.Color("#FE640B"), // carrot
		Text:       lipgloss.Color("#CDD6F4"),
		Dim:        lipgloss.Color("#6C7086"),
		Reached:    lipgloss.Color("#A6E3A1"),
		Halfway:    lipgloss.Color("#89B4FA"),
		Behind:     lipgloss.Color("#9399B2"),
		Untargeted: lipgloss.Color("#F9E2AF"),
		Alert:      lipgloss.Color("#F38BA8"),
		Frame:      lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Progress tiers, see ForPercent.
	Reached    lipgloss.Style
	Halfway    lipgloss.Style
	Behind     lipgloss.Style
	Untargeted lipgloss.Style

	// Label is the nutrient name column.
	Label lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Heading).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Error:    fg(theme.Alert),
		Success:  fg(theme.Reached),
		Warning:  fg(theme.Untargeted),

		Reached:    fg(theme.Reached).Bold(true),
		Halfway:    fg(theme.Halfway),
		Behind:     fg(theme.Behind),
		Untargeted: fg(theme.Untargeted).Italic(true),

		Label: fg(theme.Text).Width(14),

		StatusBar: fg(theme.Dim).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: fg(theme.Dim),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForPercent picks the style for a consumed/target ratio. defined is false
// for nutrients without a positive target.
func (s *Styles) ForPercent(percent float64, defined bool) lipgloss.Style {
	switch {
	case !defined:
		return s.Untargeted
	case percent >= ReachedAt:
		return s.Reached
	case percent >= HalfwayAt:
		return s.Halfway
	default:
		return s.Behind
	}
}
