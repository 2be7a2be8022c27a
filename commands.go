package main

import (
	"context"
	"time"

	"make-it-right/helpers"
	"make-it-right/payment"
	"make-it-right/refresh"
	"make-it-right/session"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// connectWallet asks the connector for the account address
func connectWallet(s *session.Session, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		addr, err := s.Dial(ctx)
		return walletConnectedMsg{address: addr, err: err}
	}
}

// unlockWallet decrypts the keystore with the entered passphrase
func unlockWallet(u unlocker, passphrase string) tea.Cmd {
	return func() tea.Msg {
		return walletUnlockedMsg{err: u.Unlock(passphrase)}
	}
}

// fetchBalance loads the account balance; the token decides whether the result is still wanted
func fetchBalance(l Ledger, address string, tok refresh.Token, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		bal, err := l.GetBalance(ctx, address)
		return balanceLoadedMsg{token: tok, address: address, balance: bal, err: err}
	}
}

// fetchHistory loads the most recent page of payments
func fetchHistory(l Ledger, address string, limit int, tok refresh.Token, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		records, err := l.GetRecentTransactions(ctx, address, limit)
		return historyLoadedMsg{token: tok, address: address, records: records, err: err}
	}
}

// submitPayment sends one payment request to the ledger
func submitPayment(l Ledger, req payment.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := l.SendPayment(ctx, req.Params())
		return paymentSubmittedMsg{req: req, result: res, err: err}
	}
}

// waitForPayment blocks until the notifier delivers the next accepted payment.
// Update re-arms it after every delivery.
func waitForPayment(events <-chan payment.Receipt) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-events
		if !ok {
			return nil
		}
		return paymentSucceededMsg{receipt: r}
	}
}

// expireToast hides toast number seq after toastDuration
func expireToast(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return nil
		}
		return clipboardCopiedMsg{what: what}
	}
}

// clearClipboard waits 2 seconds then clears clipboard feedback
func clearClipboard() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearClipboardMsg{}
	})
}

// -------------------- MODEL HELPER METHODS --------------------
// These methods help with state management and command generation

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string, keyvals ...interface{}) {
	if !m.logEnabled || !m.logReady || m.logger == nil {
		return
	}

	// Use the logger to write messages
	switch logType {
	case "info":
		m.logger.Info(message, keyvals...)
	case "success":
		m.logger.Info("✓ "+message, keyvals...)
	case "error":
		m.logger.Error(message, keyvals...)
	case "warning":
		m.logger.Warn(message, keyvals...)
	case "debug":
		m.logger.Debug(message, keyvals...)
	default:
		m.logger.Print(message, keyvals...)
	}

	// Update viewport content
	m.updateLogViewport()
}

// refreshAccount starts a balance and a history fetch for the connected address
func (m *model) refreshAccount() tea.Cmd {
	addr := m.session.Address()
	if addr == "" {
		return nil
	}
	m.addLog("info", "Refreshing account", "address", helpers.ShortenAddr(addr))
	return tea.Batch(m.refreshBalance(), m.refreshHistory())
}

func (m *model) refreshBalance() tea.Cmd {
	addr := m.session.Address()
	tok := m.balance.Begin(addr)
	return fetchBalance(m.ledger, addr, tok, m.cfg.RequestTimeout)
}

func (m *model) refreshHistory() tea.Cmd {
	addr := m.session.Address()
	tok := m.history.Begin(addr)
	return fetchHistory(m.ledger, addr, m.history.Limit(), tok, m.cfg.RequestTimeout)
}

// updateLogViewport refreshes the viewport content with log output
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}

	// Get content from log buffer
	content := m.logBuffer.String()
	m.logViewport.SetContent(content)
	// Scroll to bottom to show latest entries
	m.logViewport.GotoBottom()
}
