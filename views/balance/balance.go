package balance

import (
	"fmt"
	"strings"

	"make-it-right/helpers"
	"make-it-right/refresh"
	"make-it-right/stellar"
	"make-it-right/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the balance view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("y") + " copy address",
		styles.Key("r") + " refresh",
		styles.Key("tab") + " next tab",
		styles.Key("x") + " disconnect",
		styles.Key("l") + " logger",
		styles.Key("q") + " quit",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the account balance card
func Render(address string, b *refresh.Balance, accountURL, copiedMsg, warn, spinnerView string) string {
	h := styles.TitleStyle.Render("Account Balance")

	// address links to the explorer's account page
	addrStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	sub := styles.Hyperlink(accountURL, addrStyle.Render(address))
	if copiedMsg != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(copiedMsg)
	}

	lines := []string{h, sub, ""}

	if warn != "" {
		lines = append(lines, styles.Alert("warning", "⚠ "+warn, 0), "")
	}

	bal := b.Value()
	if bal == nil {
		if b.Loading() {
			lines = append(lines, spinnerView+" fetching balance…")
		} else {
			lines = append(lines, styles.MutedStyle.Render("Balance not loaded yet. Press ")+styles.Key("r")+styles.MutedStyle.Render(" to refresh."))
		}
		return strings.Join(lines, "\n")
	}

	xlmLine := fmt.Sprintf("%s  %s",
		lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("XLM"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatXLM(bal.Native)),
	)
	updated := "updated " + helpers.LoadedAt(bal.LoadedAt, b.Loading())
	if b.Loading() {
		updated = spinnerView + " " + updated
	}
	lines = append(lines, xlmLine, styles.MutedStyle.Render(updated), "")

	if len(bal.Assets) > 0 {
		lines = append(lines, styles.MutedStyle.Render("Other assets"))
		for _, a := range bal.Assets {
			lines = append(lines, renderAsset(a))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		styles.MutedStyle.Render("Tip: keep at least 1 XLM in your account for network reserves."),
		"",
		styles.MutedStyle.Render("Receive address"),
		stellar.GenerateQRCode(address),
	)

	return strings.Join(lines, "\n")
}

func renderAsset(a stellar.Asset) string {
	return fmt.Sprintf("%-12s  %s  %s",
		lipgloss.NewStyle().Foreground(styles.CAccent).Render(a.Code),
		lipgloss.NewStyle().Foreground(styles.CText).Render(helpers.FormatBalance(a.Balance, 2, 7)),
		styles.MutedStyle.Render("issuer "+helpers.ShortenAddr(a.Issuer)),
	)
}
