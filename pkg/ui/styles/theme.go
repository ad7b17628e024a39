// Package styles provides the shared palette and lipgloss styles for the
// msgassist UI.
package styles

import (
	"charm.land/lipgloss/v2"
)

// Color palette - ANSI 256 colors used throughout the application
var (
	ColorAccent = lipgloss.Color("141")

	ColorText       = lipgloss.Color("252")
	ColorTextMuted  = lipgloss.Color("245")
	ColorTextBright = lipgloss.Color("15")

	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("42")

	ColorPlaceholder = lipgloss.Color("240")

	ColorBorder      = lipgloss.Color("141")
	ColorBorderMuted = lipgloss.Color("62")
)

// Panel/Box styles
var (
	// BoxStyle is the rounded box used by the modal and the settings panel
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	// ResponseBoxStyle frames the answer area inside the ask modal
	ResponseBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorBorderMuted).
				Padding(0, 1)

	// ResponseBoxFocusedStyle is ResponseBoxStyle while the answer has focus
	ResponseBoxFocusedStyle = ResponseBoxStyle.
				BorderForeground(ColorAccent)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	TextMutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	TextBoldStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	// AuthorStyle colors the author prefix of a message line
	AuthorStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)
)

// Selection and highlighting
var (
	SelectedStyle = lipgloss.NewStyle().
		Foreground(ColorTextBright).
		Background(ColorAccent).
		Bold(true)
)

// Input and form styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(20)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	EditStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorPlaceholder).
				Italic(true)
)

// Buttons
var (
	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright).
			Background(ColorBorderMuted).
			Padding(0, 2)

	ButtonBusyStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Background(lipgloss.Color("237")).
			Padding(0, 2)
)

// Feedback styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Header bar
var (
	HeaderStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1).
		Bold(true)
)
