package history

import (
	"fmt"
	"strings"
	"time"

	"make-it-right/helpers"
	"make-it-right/refresh"
	"make-it-right/stellar"
	"make-it-right/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the history view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("r") + " refresh",
		styles.Key("tab") + " next tab",
		styles.Key("x") + " disconnect",
		styles.Key("l") + " logger",
		styles.Key("q") + " quit",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the recent-transactions list. txURL maps a transaction
// hash to its explorer page.
func Render(h *refresh.History, txURL func(hash string) string, spinnerView string, now time.Time) string {
	title := styles.TitleStyle.Render("Recent Transactions")
	if h.Loading() {
		title += "  " + spinnerView
	}
	lines := []string{title, styles.MutedStyle.Render(fmt.Sprintf("Last %d payments, newest first", h.Limit())), ""}

	switch {
	case h.Empty():
		lines = append(lines,
			styles.MutedStyle.Render("No transactions yet."),
			styles.MutedStyle.Render("Payments you send or receive will show up here."),
		)
		return strings.Join(lines, "\n")
	case len(h.Records()) == 0 && h.Loading():
		lines = append(lines, spinnerView+" loading transactions…")
		return strings.Join(lines, "\n")
	case len(h.Records()) == 0:
		lines = append(lines, styles.MutedStyle.Render("Transactions not loaded. Press ")+styles.Key("r")+styles.MutedStyle.Render(" to refresh."))
		return strings.Join(lines, "\n")
	}

	for _, r := range h.Records() {
		lines = append(lines, renderRecord(r, h.Direction(r), txURL, now))
	}
	return strings.Join(lines, "\n")
}

func renderRecord(r stellar.TransactionRecord, dir refresh.Direction, txURL func(string) string, now time.Time) string {
	var arrow, label, counterparty string
	var color lipgloss.Color
	if dir == refresh.Sent {
		arrow, label, counterparty, color = "↑", "Sent", r.To, styles.CWarn
	} else {
		arrow, label, counterparty, color = "↓", "Received", r.From, styles.CAccent
	}

	amount := helpers.NoValue
	if r.Amount != "" {
		amount = helpers.FormatBalance(r.Amount, 2, 7)
		if r.AssetCode != "" {
			amount += " " + r.AssetCode
		}
	}

	dirStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	peer := "to "
	if dir == refresh.Received {
		peer = "from "
	}
	if counterparty == "" {
		peer = ""
	} else {
		peer += helpers.FormatAddress(counterparty, 4, 4)
	}

	hash := helpers.FormatAddress(r.Hash, 6, 4)
	if r.Hash != "" && txURL != nil {
		hash = styles.Hyperlink(txURL(r.Hash), lipgloss.NewStyle().Underline(true).Render(hash))
	}

	return fmt.Sprintf("%s %-9s %s  %s  %s  %s",
		dirStyle.Render(arrow),
		dirStyle.Render(label),
		lipgloss.NewStyle().Foreground(styles.CText).Render(amount),
		styles.MutedStyle.Render(peer),
		styles.MutedStyle.Render(helpers.FormatRelative(r.Timestamp, now)),
		hash,
	)
}
