package connect

import (
	"strings"

	"make-it-right/helpers"
	"make-it-right/session"
	"make-it-right/styles"

	"github.com/charmbracelet/lipgloss"
)

// State is everything the connect card shows.
type State struct {
	Network    string
	Connecting bool
	Alert      *session.ConnectError

	// passphrase prompt
	Unlocking bool
	Prompt    string
	UnlockErr string

	Spinner string
	Width   int
}

// Render renders the wallet connect card shown while disconnected
func Render(s State) string {
	h := styles.TitleStyle.Render("Connect your wallet")
	intro := styles.MutedStyle.Render(
		"Send an on-chain apology on the Stellar " + s.Network + ".\n" +
			"Your keystore signs every payment; the secret never leaves it.")

	lines := []string{h, intro, ""}

	switch {
	case s.Unlocking:
		lines = append(lines,
			lipgloss.NewStyle().Foreground(styles.CAccent2).Render("Keystore is locked"),
			s.Prompt,
		)
		if s.UnlockErr != "" {
			lines = append(lines, "", styles.ErrorStyle.Render(s.UnlockErr))
		}
	case s.Connecting:
		lines = append(lines, s.Spinner+" Connecting...")
	default:
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#F25D94")).
			Padding(0, 3).
			Render("Connect Wallet"))
		lines = append(lines, styles.MutedStyle.Render("Press c to connect"))
	}

	if s.Alert != nil {
		lines = append(lines, "", styles.Alert("error", "Failed to connect wallet:\n"+s.Alert.Message, helpers.Max(0, s.Width-8)))
	}

	return strings.Join(lines, "\n")
}

// Nav returns the navigation bar for the connect view
func Nav(width int, unlocking bool) string {
	var left string
	if unlocking {
		left = strings.Join([]string{
			styles.Key("Enter") + " unlock",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("c") + " connect",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}
