package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"make-it-right/config"
	"make-it-right/payment"
	"make-it-right/session"
	"make-it-right/stellar"
	"make-it-right/wallet"
)

// ---- fakes ----

type fakeLedger struct {
	mu           sync.Mutex
	balance      stellar.Balance
	records      []stellar.TransactionRecord
	result       stellar.PaymentResult
	sendErr      error
	balanceCalls int
	historyCalls int
	sent         []stellar.PaymentParams
}

func (f *fakeLedger) GetBalance(_ context.Context, address string) (stellar.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	b := f.balance
	b.Address = address
	return b, nil
}

func (f *fakeLedger) SendPayment(_ context.Context, p stellar.PaymentParams) (stellar.PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return f.result, f.sendErr
}

func (f *fakeLedger) GetRecentTransactions(_ context.Context, _ string, _ int) ([]stellar.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	return f.records, nil
}

func (f *fakeLedger) ExplorerLink(id string, kind stellar.LinkKind) string {
	return "https://stellar.expert/explorer/testnet/" + string(kind) + "/" + id
}

func (f *fakeLedger) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balanceCalls, f.historyCalls
}

type fakeConnector struct {
	mu      sync.Mutex
	address string
	err     error
	locked  bool
}

func (f *fakeConnector) Connect(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return "", wallet.ErrLocked
	}
	return f.address, f.err
}

func (f *fakeConnector) Disconnect() {}

func (f *fakeConnector) Unlock(passphrase string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if passphrase != "hunter22" {
		return wallet.ErrBadPassphrase
	}
	f.locked = false
	return nil
}

// ---- helpers ----

func newTestModel(l Ledger, c session.Connector) *model {
	m := newModel(deps{cfg: config.DefaultConfig(), ledger: l, connector: c})
	m.w, m.h = 120, 40
	return &m
}

// drain runs cmd and returns the messages it produces, flattening batches.
// Commands that wait on a timer or a channel are skipped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// feed applies msgs in order and drains every resulting command.
func feed(m *model, msgs ...tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		out = append(out, drain(cmd)...)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func connected(t *testing.T, l *fakeLedger) (*model, string) {
	t.Helper()
	addr := keypair.MustRandom().Address()
	m := newTestModel(l, &fakeConnector{address: addr})

	loaded := feed(m, feed(m, key("c"))...)
	require.True(t, m.session.Connected())
	feed(m, loaded...)
	return m, addr
}

// ---- tests ----

func TestConnectFetchesAccountOnce(t *testing.T) {
	l := &fakeLedger{balance: stellar.Balance{Native: "100.0000000"}}
	m, addr := connected(t, l)

	b, h := l.calls()
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, h)
	assert.Equal(t, addr, m.session.Address())
	assert.Equal(t, "100.0000000", m.balance.Native())
	assert.Contains(t, m.View(), "Send an Apology")
}

func TestConnectNotInstalled(t *testing.T) {
	m := newTestModel(&fakeLedger{}, &fakeConnector{err: wallet.ErrNotInstalled})

	feed(m, feed(m, key("c"))...)

	assert.Equal(t, session.Disconnected, m.session.State())
	require.NotNil(t, m.connectAlert)
	assert.Equal(t, session.ConnectNotInstalled, m.connectAlert.Kind)
	assert.False(t, m.unlocking)
	assert.Contains(t, m.View(), "Failed to connect wallet")
}

func TestLockedWalletPromptsForPassphrase(t *testing.T) {
	addr := keypair.MustRandom().Address()
	l := &fakeLedger{}
	m := newTestModel(l, &fakeConnector{address: addr, locked: true})

	feed(m, feed(m, key("c"))...)
	require.True(t, m.unlocking)
	assert.Nil(t, m.connectAlert)

	// wrong passphrase keeps the prompt open
	feed(m, key("nope"))
	feed(m, feed(m, key("enter"))...)
	assert.True(t, m.unlocking)
	assert.NotEmpty(t, m.unlockErr)

	feed(m, key("hunter22"))
	unlocked := feed(m, key("enter"))
	connectedMsgs := feed(m, unlocked...)
	feed(m, feed(m, connectedMsgs...)...)

	assert.False(t, m.unlocking)
	assert.True(t, m.session.Connected())
	assert.Equal(t, addr, m.session.Address())
	b, h := l.calls()
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, h)
}

func TestPaymentSuccess(t *testing.T) {
	l := &fakeLedger{
		balance: stellar.Balance{Native: "100.0000000"},
		result:  stellar.PaymentResult{Hash: "abc123", Succeeded: true},
	}
	m, addr := connected(t, l)
	dest := keypair.MustRandom().Address()

	m.draft.Recipient = dest
	m.draft.Amount = "1.5"
	m.draft.Memo = "sorry"
	submitted := drain(m.submitDraft())
	assert.True(t, m.draft.Submitting)
	assert.Contains(t, m.View(), "Sending payment")

	feed(m, submitted...)

	require.Len(t, l.sent, 1)
	assert.Equal(t, stellar.PaymentParams{From: addr, To: dest, Amount: "1.5", Memo: "sorry"}, l.sent[0])
	assert.Empty(t, m.draft.Recipient)
	assert.Empty(t, m.draft.Amount)
	assert.Empty(t, m.draft.Memo)
	assert.Equal(t, "abc123", m.draft.Hash)
	assert.Contains(t, m.View(), "abc123")

	var receipt payment.Receipt
	select {
	case receipt = <-m.notifier.Events():
	case <-time.After(time.Second):
		t.Fatal("no payment event")
	}
	assert.Equal(t, "abc123", receipt.Hash)

	refreshed := feed(m, paymentSucceededMsg{receipt: receipt})
	assert.Equal(t, "Sent successfully", m.toast)
	feed(m, refreshed...)

	b, h := l.calls()
	assert.Equal(t, 2, b, "one refresh after connect, one after the payment")
	assert.Equal(t, 2, h)

	select {
	case r := <-m.notifier.Events():
		t.Fatalf("unexpected second event %v", r)
	default:
	}
}

func TestPaymentRejected(t *testing.T) {
	l := &fakeLedger{
		sendErr: &stellar.LedgerError{Status: 400, OperationCodes: []string{"op_underfunded"}},
	}
	m, _ := connected(t, l)
	dest := keypair.MustRandom().Address()

	m.draft.Recipient = dest
	m.draft.Amount = "5000"
	feed(m, drain(m.submitDraft())...)

	require.NotNil(t, m.draft.Alert)
	assert.Equal(t, payment.AlertError, m.draft.Alert.Kind)
	assert.Contains(t, m.draft.Alert.Text, "Insufficient balance.")
	assert.Equal(t, dest, m.draft.Recipient, "fields kept for correction")
	assert.False(t, m.draft.Submitting)
	assert.Empty(t, m.toast)

	select {
	case <-m.notifier.Events():
		t.Fatal("rejected payment must not notify")
	default:
	}
}

func TestInvalidDraftIsNotSubmitted(t *testing.T) {
	l := &fakeLedger{}
	m, _ := connected(t, l)

	m.draft.Recipient = "not-an-address"
	m.draft.Amount = "-1"
	assert.Nil(t, m.submitDraft())
	assert.False(t, m.draft.Submitting)
	assert.True(t, m.draft.Errors.Has(payment.FieldRecipient, payment.CodeInvalidAddress))
	assert.True(t, m.draft.Errors.Has(payment.FieldAmount, payment.CodeNotPositive))
	assert.Empty(t, l.sent)
}

func TestSendFormOpensAndCancels(t *testing.T) {
	m, _ := connected(t, &fakeLedger{})

	feed(m, key("enter"))
	require.NotNil(t, m.sendForm)

	feed(m, key("esc"))
	assert.Nil(t, m.sendForm)
}

func TestBalanceLastRequestWins(t *testing.T) {
	m, addr := connected(t, &fakeLedger{})

	first := m.balance.Begin(addr)
	second := m.balance.Begin(addr)

	feed(m, balanceLoadedMsg{token: second, address: addr, balance: stellar.Balance{Native: "2.0000000"}})
	feed(m, balanceLoadedMsg{token: first, address: addr, balance: stellar.Balance{Native: "1.0000000"}})

	assert.Equal(t, "2.0000000", m.balance.Native())
}

func TestBalanceFailureShowsWarning(t *testing.T) {
	m, addr := connected(t, &fakeLedger{balance: stellar.Balance{Native: "7.0000000"}})

	tok := m.balance.Begin(addr)
	feed(m, balanceLoadedMsg{token: tok, address: addr, err: errors.New("boom")})

	assert.Equal(t, "7.0000000", m.balance.Native(), "previous value kept")
	assert.NotEmpty(t, m.balanceWarn)
	feed(m, key("3"))
	assert.Contains(t, m.View(), "Failed to fetch balance")
}

func TestDisconnectDropsInFlightFetches(t *testing.T) {
	l := &fakeLedger{balance: stellar.Balance{Native: "9.0000000"}}
	m, _ := connected(t, l)

	inflight := feed(m, key("r"))
	require.Len(t, inflight, 2)

	feed(m, key("x"))
	assert.Equal(t, session.Disconnected, m.session.State())

	feed(m, inflight...)
	assert.Nil(t, m.balance.Value())
	assert.Empty(t, m.history.Records())
	assert.Contains(t, m.View(), "Connect your wallet")
}

func TestToastExpiresOnlyForItsOwnSequence(t *testing.T) {
	m, _ := connected(t, &fakeLedger{})

	feed(m, paymentSucceededMsg{})
	feed(m, paymentSucceededMsg{})
	require.Equal(t, 2, m.toastSeq)

	feed(m, toastExpiredMsg{seq: 1})
	assert.Equal(t, "Sent successfully", m.toast)

	feed(m, toastExpiredMsg{seq: 2})
	assert.Empty(t, m.toast)
}

func TestTabsAndHistoryView(t *testing.T) {
	me := "GME"
	l := &fakeLedger{records: []stellar.TransactionRecord{
		{ID: "1", Kind: "payment", Amount: "3.0000000", AssetCode: "XLM", From: "GPEER", To: me, Hash: "deadbeef", Timestamp: time.Now()},
	}}
	m := newTestModel(l, &fakeConnector{address: me})
	feed(m, feed(m, feed(m, key("c"))...)...)

	feed(m, key("2"))
	assert.Equal(t, tabHistory, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "Recent Transactions")
	assert.Contains(t, view, "Received")

	feed(m, key("tab"))
	assert.Equal(t, tabBalance, m.activeTab)
	feed(m, key("tab"))
	assert.Equal(t, tabSend, m.activeTab)
}

func TestLoggerPanel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logger = true
	m := newModel(deps{cfg: cfg, ledger: &fakeLedger{}, connector: &fakeConnector{address: "GABC"}})
	m.w, m.h = 120, 40

	feed(&m, tea.WindowSizeMsg{Width: 120, Height: 40}, logInitMsg{})
	require.True(t, m.logReady)

	feed(&m, feed(&m, key("c"))...)
	logs := m.logBuffer.String()
	assert.Contains(t, logs, "Logger enabled")
	assert.Contains(t, logs, "Wallet connected")
	assert.True(t, strings.Contains(m.View(), "Activity"))
}

func TestLoggerToggleSavesOnlyLoggerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network": "testnet", "history_limit": 25}`), 0o644))

	// loaded with a --network=public style override in effect
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	cfg.Network = "public"
	cfg.HistoryLimit = 50

	m := newModel(deps{cfg: cfg, configPath: path, ledger: &fakeLedger{}, connector: &fakeConnector{address: "GABC"}})
	feed(&m, key("l"))
	require.True(t, m.logEnabled)

	saved, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.True(t, saved.Logger)
	assert.Equal(t, "testnet", saved.Network)
	assert.Equal(t, 25, saved.HistoryLimit)
	assert.Equal(t, "public", m.cfg.Network, "running session keeps its overrides")
}

func TestResultOfAbandonedPaymentIsDropped(t *testing.T) {
	l := &fakeLedger{result: stellar.PaymentResult{Hash: "old", Succeeded: true}}
	m, _ := connected(t, l)

	m.draft.Recipient = keypair.MustRandom().Address()
	m.draft.Amount = "1"
	first := drain(m.submitDraft())
	require.Len(t, first, 1)

	// disconnect and reconnect while the first payment is in flight
	feed(m, key("x"))
	feed(m, feed(m, feed(m, key("c"))...)...)
	require.True(t, m.session.Connected())

	l.mu.Lock()
	l.result = stellar.PaymentResult{Hash: "new", Succeeded: true}
	l.mu.Unlock()

	m.draft.Recipient = keypair.MustRandom().Address()
	m.draft.Amount = "2"
	second := drain(m.submitDraft())
	require.Len(t, second, 1)
	require.True(t, m.draft.Submitting)

	feed(m, first...)
	assert.True(t, m.draft.Submitting, "second payment still in flight")
	assert.Empty(t, m.draft.Hash)
	assert.Equal(t, "2", m.draft.Amount)
	select {
	case r := <-m.notifier.Events():
		t.Fatalf("abandoned payment notified %v", r)
	default:
	}

	feed(m, second...)
	assert.False(t, m.draft.Submitting)
	assert.Equal(t, "new", m.draft.Hash)
}
