package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors
var (
	CBg      = lipgloss.Color("#0B0F14") // near-black
	CPanel   = lipgloss.Color("#0F1720") // slightly lighter
	CBorder  = lipgloss.Color("#874BFD")
	CMuted   = lipgloss.Color("#8AA0B6")
	CText    = lipgloss.Color("#D6E2F0")
	CAccent  = lipgloss.Color("#7EE787") // green-ish
	CAccent2 = lipgloss.Color("#79C0FF") // blue-ish
	CWarn    = lipgloss.Color("#FFA657") // orange
	CError   = lipgloss.Color("#FF5F56")
)

// Shared styles
var (
	AppStyle = lipgloss.NewStyle().
			Background(CBg).
			Foreground(CText)

	TitleStyle = lipgloss.NewStyle().
			Foreground(CAccent2).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Background(CPanel).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(CBorder).
			Padding(1, 2)

	NavStyle = lipgloss.NewStyle().
			Background(CPanel).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(CBorder).
			Padding(0, 1)

	HotkeyStyle = lipgloss.NewStyle().
			Foreground(CMuted)

	HotkeyKeyStyle = lipgloss.NewStyle().
			Foreground(CAccent).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(CMuted)

	ErrorStyle = lipgloss.NewStyle().Foreground(CError).Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(CAccent).Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(CMuted).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(CBg).
			Background(CAccent2).
			Bold(true).
			Padding(0, 2)

	AlertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// Key renders a key with accent styling
func Key(s string) string {
	return HotkeyKeyStyle.Render(s)
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink to url.
func Hyperlink(url, text string) string {
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, text)
}

// Alert renders msg in a bordered box colored by tone ("success", "error", "warning").
func Alert(tone, msg string, width int) string {
	c := CAccent2
	switch tone {
	case "success":
		c = CAccent
	case "error":
		c = CError
	case "warning":
		c = CWarn
	}
	st := AlertStyle.BorderForeground(c).Foreground(c)
	if width > 0 {
		st = st.Width(width)
	}
	return st.Render(msg)
}
