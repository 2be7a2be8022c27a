package main

import (
	"strings"

	"make-it-right/helpers"
	"make-it-right/stellar"
	"make-it-right/styles"
	"make-it-right/views/balance"
	"make-it-right/views/connect"
	"make-it-right/views/history"
	logview "make-it-right/views/log"
	"make-it-right/views/send"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	// Connected address
	var addrDisplay string
	if addr := m.session.Address(); addr != "" {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Wallet: " + helpers.FadeString(helpers.ShortenAddr(addr), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Wallet: " + m.session.State().String())
	}

	// Network status with balance once connected
	statusIcon := "○"
	statusColor := cError
	statusText := m.cfg.Network
	switch {
	case m.session.Connecting():
		statusText += " · connecting..."
	case m.session.Connected():
		statusIcon = "●"
		statusColor = cAccent
		statusText += " · " + helpers.FormatNavbarBalance(m.balance.Native())
	}
	netDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	// Center title
	titleText := lipgloss.NewStyle().
		Bold(true).
		Render(helpers.FadeString("make it right", "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	netWidth := lipgloss.Width(netDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + netWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + netDisplay
	} else {
		// Three-column layout: Address | Title (centered) | Network
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay +
			strings.Repeat(" ", max(1, leftPadding)) +
			titleText +
			strings.Repeat(" ", max(1, rightPadding)) +
			netDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	out := headerLine + "\n" + separator
	if m.toast != "" {
		out += "\n" + styles.Alert("success", "✓ "+m.toast, 0)
	}
	return out
}

func (m *model) tabBar() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := name
		if tab(i) == m.activeTab {
			parts = append(parts, styles.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, styles.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *model) View() string {
	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())

	var pageContent string
	var nav string

	if !m.session.Connected() {
		content := connect.Render(connect.State{
			Network:    m.cfg.Network,
			Connecting: m.session.Connecting(),
			Alert:      m.connectAlert,
			Unlocking:  m.unlocking,
			Prompt:     m.passInput.View(),
			UnlockErr:  m.unlockErr,
			Spinner:    m.spin.View(),
			Width:      m.w,
		})
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(content)
		nav = connect.Nav(m.w-2, m.unlocking)
	} else {
		var content string
		switch m.activeTab {
		case tabSend:
			txURL := ""
			if m.draft.Hash != "" {
				txURL = m.ledger.ExplorerLink(m.draft.Hash, stellar.LinkTx)
			}
			content = send.Render(send.State{
				Draft:   m.draft,
				Form:    m.sendForm,
				Balance: m.balance.Native(),
				TxURL:   txURL,
				Spinner: m.spin.View(),
				Copied:  m.copiedMsg,
				Width:   m.w,
			})
			nav = send.Nav(m.w-2, m.sendForm != nil)

		case tabHistory:
			txURL := func(hash string) string {
				return m.ledger.ExplorerLink(hash, stellar.LinkTx)
			}
			content = history.Render(m.history, txURL, m.spin.View(), m.now())
			nav = history.Nav(m.w - 2)

		case tabBalance:
			addr := m.session.Address()
			content = balance.Render(
				addr,
				&m.balance,
				m.ledger.ExplorerLink(addr, stellar.LinkAccount),
				m.copiedMsg,
				m.balanceWarn,
				m.spin.View(),
			)
			nav = balance.Nav(m.w - 2)
		}
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(m.tabBar() + "\n\n" + content)
	}

	sections := []string{headerPanel, pageContent, nav}

	// Render log panel only if enabled
	if m.logEnabled {
		m.logViewport.Height = logview.Height(m.h)
		sections = append(sections, logview.Render(m.w, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
