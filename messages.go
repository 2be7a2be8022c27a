package main

import (
	"make-it-right/payment"
	"make-it-right/refresh"
	"make-it-right/stellar"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// walletConnectedMsg contains result of the wallet connect call
type walletConnectedMsg struct {
	address string
	err     error
}

// walletUnlockedMsg contains result of unlocking the keystore
type walletUnlockedMsg struct {
	err error
}

// balanceLoadedMsg carries a balance fetch result tagged with its request token
type balanceLoadedMsg struct {
	token   refresh.Token
	address string
	balance stellar.Balance
	err     error
}

// historyLoadedMsg carries a history fetch result tagged with its request token
type historyLoadedMsg struct {
	token   refresh.Token
	address string
	records []stellar.TransactionRecord
	err     error
}

// paymentSubmittedMsg contains the ledger's answer to a payment request
type paymentSubmittedMsg struct {
	req    payment.Request
	result stellar.PaymentResult
	err    error
}

// paymentSucceededMsg is delivered from the notifier once per accepted payment
type paymentSucceededMsg struct {
	receipt payment.Receipt
}

// toastExpiredMsg hides the toast it was scheduled for
type toastExpiredMsg struct {
	seq int
}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	what string
}

// clearClipboardMsg clears the copy feedback
type clearClipboardMsg struct{}
