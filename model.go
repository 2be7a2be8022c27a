package main

import (
	"context"
	"strings"
	"time"

	"make-it-right/config"
	"make-it-right/payment"
	"make-it-right/refresh"
	"make-it-right/session"
	"make-it-right/stellar"
	"make-it-right/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Ledger is the chain-facing half of the external helper.
type Ledger interface {
	GetBalance(ctx context.Context, address string) (stellar.Balance, error)
	SendPayment(ctx context.Context, p stellar.PaymentParams) (stellar.PaymentResult, error)
	GetRecentTransactions(ctx context.Context, address string, limit int) ([]stellar.TransactionRecord, error)
	ExplorerLink(id string, kind stellar.LinkKind) string
}

// unlocker is implemented by connectors that can be unlocked in-app.
type unlocker interface {
	Unlock(passphrase string) error
}

// tab is a page of the connected view.
type tab int

const (
	tabSend tab = iota
	tabHistory
	tabBalance
)

var tabNames = []string{"Send", "History", "Balance"}

const toastDuration = 5 * time.Second

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	cfg        config.Config
	configPath string

	// external helper, injected
	ledger   Ledger
	session  *session.Session
	notifier *refresh.Notifier

	activeTab tab

	// connect state
	connectAlert *session.ConnectError
	unlocking    bool
	passInput    textinput.Model
	unlockErr    string

	// payment form
	validator payment.Validator
	draft     *payment.Draft
	sendForm  *huh.Form

	// derived account views
	balance     refresh.Balance
	history     *refresh.History
	balanceWarn string

	// toast shown after a successful payment
	toast    string
	toastSeq int

	// clipboard feedback
	copiedMsg string

	spin spinner.Model

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *strings.Builder
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model

	now func() time.Time
}

// deps are the collaborators main constructs once and hands to the model.
type deps struct {
	cfg        config.Config
	configPath string
	ledger     Ledger
	connector  session.Connector
	notifier   *refresh.Notifier
}

// -------------------- INIT --------------------

// newModel creates and initializes a new model around the injected collaborators
func newModel(d deps) model {
	notifier := d.notifier
	if notifier == nil {
		notifier = refresh.NewNotifier()
	}
	validator := payment.Validator{Strict: d.cfg.StrictAddresses}

	// passphrase prompt
	in := textinput.New()
	in.Placeholder = "keystore passphrase"
	in.Prompt = "Passphrase: "
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent)
	in.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	in.CharLimit = 128
	in.Width = 40

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 10) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	return model{
		cfg:         d.cfg,
		configPath:  d.configPath,
		ledger:      d.ledger,
		session:     session.New(d.connector),
		notifier:    notifier,
		activeTab:   tabSend,
		passInput:   in,
		validator:   validator,
		draft:       payment.NewDraft(validator, notifier),
		history:     refresh.NewHistory(d.cfg.HistoryLimit),
		spin:        sp,
		logEnabled:  d.cfg.Logger,
		logBuffer:   &strings.Builder{},
		logViewport: vp,
		logSpinner:  logSpin,
		now:         time.Now,
	}
}

// Init implements tea.Model interface and returns initial commands
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, waitForPayment(m.notifier.Events())}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	return tea.Batch(cmds...)
}
