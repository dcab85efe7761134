// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2933", Dark: "#E4E7EB"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#52606D", Dark: "#9AA5B1"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#9AA5B1", Dark: "#616E7C"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#CBD2D9", Dark: "#3E4C59"}
	BorderFocusedColor = lipgloss.AdaptiveColor{Light: "#2C7A7B", Dark: "#81E6D9"}

	AccentColor  = lipgloss.AdaptiveColor{Light: "#2C7A7B", Dark: "#81E6D9"}
	PlayingColor = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#9AE6B4"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6E05E"}
)

// Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	DescriptionStyle = lipgloss.NewStyle().Foreground(TextDescriptionColor)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	CountdownStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	InstructionStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	SelectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	ActiveItemStyle = lipgloss.NewStyle().Foreground(PlayingColor)

	PlayingStyle = lipgloss.NewStyle().Foreground(PlayingColor)

	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
)
