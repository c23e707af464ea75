// Package styles provides shared lipgloss styles for devenv output.
package styles

import "github.com/charmbracelet/lipgloss"

// Colors used across detect, doctor and cleanup summaries.
var (
	// Primary is the main accent color (cyan/teal)
	Primary lipgloss.TerminalColor = lipgloss.Color("62")

	// Success is used for checkmarks and healthy findings (green)
	Success lipgloss.TerminalColor = lipgloss.Color("82")

	// Warning is used for gaps and skipped files (yellow)
	Warning lipgloss.TerminalColor = lipgloss.Color("214")

	// Error is used for failed checks and fatal findings (red)
	Error lipgloss.TerminalColor = lipgloss.Color("196")

	// Muted is used for de-emphasized detail text (gray)
	Muted lipgloss.TerminalColor = lipgloss.Color("240")
)

// Common styles
var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)

// Glyphs for check results.
const (
	GlyphOK   = "✓"
	GlyphWarn = "⚠"
	GlyphFail = "✗"
)

// OK renders a green checkmark line prefix.
func OK() string { return SuccessStyle.Render(GlyphOK) }

// Warn renders a yellow warning prefix.
func Warn() string { return WarningStyle.Render(GlyphWarn) }

// Fail renders a red failure prefix.
func Fail() string { return ErrorStyle.Render(GlyphFail) }
