package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the semantic colors and styles for the application
type Theme struct {
	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Subtle    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor

	// Styles
	DocStyle         lipgloss.Style
	TitleStyle       lipgloss.Style
	CommandNameStyle lipgloss.Style
	CommandArgsStyle lipgloss.Style
	PartialStyle     lipgloss.Style
	StatusStyle      lipgloss.Style
	ErrorStyle       lipgloss.Style
	FooterStyle      lipgloss.Style
}

// DefaultTheme creates a default theme
func DefaultTheme() *Theme {
	primary := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	secondary := lipgloss.AdaptiveColor{Light: "#4B56FD", Dark: "#4B56FD"}
	text := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FFFFFF"}
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF4136"}
	success := lipgloss.AdaptiveColor{Light: "#00A000", Dark: "#2ECC40"}
	warning := lipgloss.AdaptiveColor{Light: "#FFA500", Dark: "#FF851B"}

	return &Theme{
		Primary:   primary,
		Secondary: secondary,
		Text:      text,
		Subtle:    subtle,
		Error:     errorColor,
		Success:   success,
		Warning:   warning,

		DocStyle: lipgloss.NewStyle().Padding(1, 2),

		TitleStyle: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		CommandNameStyle: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),

		CommandArgsStyle: lipgloss.NewStyle().
			Foreground(text).
			PaddingLeft(2),

		PartialStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(warning).
			Foreground(subtle).
			Padding(0, 1),

		StatusStyle: lipgloss.NewStyle().
			Foreground(success),

		ErrorStyle: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),

		FooterStyle: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingTop(1),
	}
}
