// Package styles provides shared lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

// Exported color aliases.
var (
	ColorPrimary    = lipgloss.Color("#7aa2f7")
	ColorForeground = lipgloss.Color("#c0caf5")
	ColorMuted      = lipgloss.Color("#565f89")
	ColorSuccess    = lipgloss.Color("#9ece6a")
	ColorWarning    = lipgloss.Color("#e0af68")
	ColorError      = lipgloss.Color("#f7768e")
)

// Style exports.
var (
	TextPrimaryBoldStyle    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TextForegroundBoldStyle = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)
	TextMutedStyle          = lipgloss.NewStyle().Foreground(ColorMuted)
	TextSuccessStyle        = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarningStyle        = lipgloss.NewStyle().Foreground(ColorWarning)
	TextErrorStyle          = lipgloss.NewStyle().Foreground(ColorError)
)
