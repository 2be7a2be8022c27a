package log

import (
	"fmt"

	"make-it-right/helpers"
	"make-it-right/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Height is the viewport height the log panel gets for a terminal of
// height h: at most a third of the screen and never more than 12 lines.
func Height(h int) int {
	// header, tabs, nav and panel chrome
	const reserved = 12
	available := helpers.Max(4, h-reserved)
	return helpers.Min(available, helpers.Min(h/3, 12))
}

// Render renders the activity log panel
func Render(width int, ready bool, spinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Activity")

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(vp.Height + 2)

	if !ready {
		return border.Render(title + "\n\n" + spinnerView + " starting logger…")
	}

	info := ""
	if n := vp.TotalLineCount(); n > vp.Height {
		info = styles.MutedStyle.Render(fmt.Sprintf(" [%d lines, %d%%]", n, int(vp.ScrollPercent()*100)))
	}

	return border.Render(title + info + "\n\n" + vp.View())
}
