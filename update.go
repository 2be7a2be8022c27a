package main

import (
	"make-it-right/config"
	"make-it-right/helpers"
	"make-it-right/session"
	"make-it-right/views/send"
	"make-it-right/wallet"

	logview "make-it-right/views/log"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// appMsg reports whether msg is one of ours rather than input for the open form.
func appMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case logInitMsg, walletConnectedMsg, walletUnlockedMsg, balanceLoadedMsg, historyLoadedMsg,
		paymentSubmittedMsg, paymentSucceededMsg, toastExpiredMsg, clipboardCopiedMsg, clearClipboardMsg,
		tea.WindowSizeMsg, spinner.TickMsg:
		return true
	}
	return false
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Passphrase prompt owns the keyboard while open
	if k, ok := msg.(tea.KeyMsg); ok && m.unlocking {
		return m.updateUnlockPrompt(k)
	}

	// Handle send form updates first
	if m.sendForm != nil && !appMsg(msg) {
		// Intercept ESC key to cancel form
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.sendForm = nil
			return m, nil
		}

		form, cmd := m.sendForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.sendForm = f

			if m.sendForm.State == huh.StateCompleted {
				m.sendForm = nil
				return m, m.submitDraft()
			}
			if m.sendForm.State == huh.StateAborted {
				m.sendForm = nil
				return m, nil
			}
		}
		return m, cmd
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled || m.logReady {
			return m, nil
		}
		// Create logger that writes to our buffer
		m.logger = log.NewWithOptions(m.logBuffer, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		})
		// Set log level and styling
		m.logger.SetLevel(log.DebugLevel)
		m.logger.SetStyles(&log.Styles{
			Timestamp: lipgloss.NewStyle().Foreground(cMuted),
			Caller:    lipgloss.NewStyle().Faint(true),
			Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
			Message:   lipgloss.NewStyle().Foreground(cText),
			Key:       lipgloss.NewStyle().Foreground(cAccent),
			Value:     lipgloss.NewStyle().Foreground(cText),
			Separator: lipgloss.NewStyle().Faint(true),
			Levels: map[log.Level]lipgloss.Style{
				log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
				log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
				log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
				log.ErrorLevel: lipgloss.NewStyle().Foreground(cError).SetString("ERROR"),
			},
		})
		m.logReady = true
		m.addLog("info", "Logger enabled", "network", m.cfg.Network)
		return m, nil

	case walletConnectedMsg:
		if msg.err != nil {
			if !m.session.Connecting() {
				return m, nil
			}
			ce := m.session.Fail(msg.err)
			m.addLog("error", "Wallet connection failed", "err", msg.err)
			if _, ok := m.session.Connector().(unlocker); ok && ce.Kind == session.ConnectLocked {
				m.connectAlert = nil
				m.unlocking = true
				m.unlockErr = ""
				return m, m.passInput.Focus()
			}
			m.connectAlert = &ce
			return m, nil
		}
		if !m.session.Succeed(msg.address) {
			return m, nil
		}
		m.connectAlert = nil
		m.activeTab = tabSend
		m.addLog("success", "Wallet connected", "address", helpers.ShortenAddr(msg.address))
		return m, m.refreshAccount()

	case walletUnlockedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, wallet.ErrBadPassphrase) {
				m.unlockErr = "Wrong passphrase, try again."
			} else {
				m.unlockErr = msg.err.Error()
			}
			m.addLog("warning", "Keystore unlock failed", "err", msg.err)
			return m, nil
		}
		m.unlocking = false
		m.unlockErr = ""
		m.passInput.Blur()
		m.addLog("info", "Keystore unlocked")
		return m, m.beginConnect()

	case balanceLoadedMsg:
		if !m.balance.Resolve(msg.token, msg.balance, msg.err) {
			m.addLog("debug", "Dropped superseded balance response", "token", msg.token)
			return m, nil
		}
		if msg.err != nil {
			m.balanceWarn = "Failed to fetch balance. Please try again."
			m.addLog("error", "Balance fetch failed", "address", helpers.ShortenAddr(msg.address), "err", msg.err)
			return m, nil
		}
		m.balanceWarn = ""
		m.addLog("success", "Balance loaded", "xlm", helpers.FormatXLM(msg.balance.Native))
		return m, nil

	case historyLoadedMsg:
		if !m.history.Resolve(msg.token, msg.records, msg.err) {
			m.addLog("debug", "Dropped superseded history response", "token", msg.token)
			return m, nil
		}
		if msg.err != nil {
			m.addLog("error", "History fetch failed", "address", helpers.ShortenAddr(msg.address), "err", msg.err)
			return m, nil
		}
		m.addLog("success", "History loaded", "records", len(msg.records))
		return m, nil

	case paymentSubmittedMsg:
		if !m.draft.InFlight(msg.req.AttemptID) {
			m.addLog("debug", "Dropped result of abandoned payment", "attempt", msg.req.AttemptID)
			return m, nil
		}
		if m.draft.Complete(msg.req, msg.result, msg.err) {
			m.addLog("success", "Payment sent", "hash", msg.result.Hash, "attempt", msg.req.AttemptID)
		} else {
			m.addLog("error", m.draft.Alert.Text, "attempt", msg.req.AttemptID, "err", msg.err)
		}
		return m, nil

	case paymentSucceededMsg:
		m.toastSeq++
		m.toast = "Sent successfully"
		return m, tea.Batch(
			m.refreshAccount(),
			expireToast(m.toastSeq),
			waitForPayment(m.notifier.Events()),
		)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case clipboardCopiedMsg:
		m.copiedMsg = "Copied " + msg.what + "!"
		m.addLog("info", "Copied "+msg.what+" to clipboard")
		return m, clearClipboard()

	case clearClipboardMsg:
		m.copiedMsg = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		// Width accounts for border and padding
		m.logViewport.Width = max(0, msg.Width-6)
		m.logViewport.Height = logview.Height(msg.Height)
		if m.logReady {
			m.updateLogViewport()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "l":
		m.logEnabled = !m.logEnabled
		m.cfg.Logger = m.logEnabled
		if m.configPath != "" {
			if err := config.SaveLogger(m.configPath, m.logEnabled); err != nil {
				m.addLog("warning", "Could not save config", "err", err)
			}
		}
		if m.logEnabled && !m.logReady {
			return m, tea.Batch(initLogViewport(), m.logSpinner.Tick)
		}
		return m, nil

	case "up", "down", "pgup", "pgdown":
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case "c":
		if m.session.State() == session.Disconnected {
			return m, m.beginConnect()
		}
		return m, nil
	}

	if !m.session.Connected() {
		return m, nil
	}

	switch msg.String() {
	case "x":
		addr := m.session.Address()
		m.session.Disconnect()
		m.balance.Reset()
		m.history.Reset()
		m.draft.Reset()
		m.sendForm = nil
		m.balanceWarn = ""
		m.toast = ""
		m.addLog("warning", "Wallet disconnected", "address", helpers.ShortenAddr(addr))
		return m, nil

	case "r":
		return m, m.refreshAccount()

	case "tab":
		m.activeTab = (m.activeTab + 1) % tab(len(tabNames))
	case "shift+tab":
		m.activeTab = (m.activeTab + tab(len(tabNames)) - 1) % tab(len(tabNames))
	case "1":
		m.activeTab = tabSend
	case "2":
		m.activeTab = tabHistory
	case "3":
		m.activeTab = tabBalance

	case "enter":
		if m.activeTab == tabSend && !m.draft.Submitting {
			m.draft.Alert = nil
			m.sendForm = send.NewForm(m.draft, m.validator, m.balance.Native())
		}

	case "y":
		return m, copyToClipboard(m.session.Address(), "address")

	case "Y":
		if m.draft.Hash != "" {
			return m, copyToClipboard(m.draft.Hash, "transaction hash")
		}
	}
	return m, nil
}

func (m *model) updateUnlockPrompt(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.unlocking = false
		m.unlockErr = ""
		m.passInput.Reset()
		m.passInput.Blur()
		return m, nil
	case "enter":
		u, ok := m.session.Connector().(unlocker)
		if !ok {
			m.unlocking = false
			return m, nil
		}
		pass := m.passInput.Value()
		m.passInput.Reset()
		m.unlockErr = ""
		return m, unlockWallet(u, pass)
	}

	var cmd tea.Cmd
	m.passInput, cmd = m.passInput.Update(k)
	return m, cmd
}

// beginConnect moves the session to Connecting and dials the wallet
func (m *model) beginConnect() tea.Cmd {
	if err := m.session.Begin(); err != nil {
		m.addLog("debug", "Connect ignored", "err", err)
		return nil
	}
	m.connectAlert = nil
	m.addLog("info", "Connecting wallet")
	return connectWallet(m.session, m.cfg.RequestTimeout)
}

// submitDraft validates the form contents and sends the payment
func (m *model) submitDraft() tea.Cmd {
	req, ok := m.draft.Prepare(m.session.Address())
	if !ok {
		m.addLog("warning", "Payment form has errors", "fields", len(m.draft.Errors))
		return nil
	}
	m.addLog("info", "Sending payment",
		"to", helpers.ShortenAddr(req.Recipient),
		"amount", req.Amount,
		"attempt", req.AttemptID)
	return submitPayment(m.ledger, req, m.cfg.RequestTimeout)
}
