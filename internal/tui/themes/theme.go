// Package themes holds the color schemes for the terminal UI.
package themes

import (
	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Accent        lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

func build(primary, accent, muted, border, errColor, success, foreground lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Accent:  accent,
		Muted:   muted,
		Border:  border,
		Error:   errColor,
		Success: success,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primary).
			Padding(0, 1).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().
			Foreground(foreground),
		Label: lipgloss.NewStyle().
			Foreground(muted).
			Width(12),
		FocusedLabel: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Width(12),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(accent),
		StatusPending: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
	}
}

// Default follows the report's own teal and orange.
var Default = build(
	lipgloss.Color("#"+layout.HeaderFill),
	lipgloss.Color("#"+layout.ClientNameHeaderFill),
	lipgloss.Color("#737373"),
	lipgloss.Color("#"+layout.HeaderFill),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#"+layout.PresentFill),
	lipgloss.Color("#fafafa"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#45475a"),
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#cdd6f4"),
)

// ByName returns the named theme, or Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
