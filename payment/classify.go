package payment

import (
	"strings"

	"github.com/pkg/errors"

	"make-it-right/stellar"
)

// Kind is the class of a submission failure.
type Kind string

const (
	KindGeneric            Kind = "generic"
	KindUnderfunded        Kind = "underfunded"
	KindNoDestination      Kind = "no_destination"
	KindLowReserve         Kind = "low_reserve"
	KindBadAuth            Kind = "bad_auth"
	KindMemoTooLong        Kind = "memo_too_long"
	KindInvalidDestination Kind = "invalid_destination"
)

const failurePrefix = "Failed to send payment. "

// Message is a classified submission failure ready for display.
type Message struct {
	Kind Kind
	Text string
}

// codeRule matches the first operation code or the transaction code.
// Rules are checked in order, so earlier rules win when both codes match.
type codeRule struct {
	op   string
	tx   string
	kind Kind
	text string
}

var codeRules = []codeRule{
	{op: "op_underfunded", tx: "tx_insufficient_balance", kind: KindUnderfunded, text: "Insufficient balance."},
	{op: "op_no_destination", kind: KindNoDestination, text: "Destination account does not exist or is not funded."},
	{op: "op_low_reserve", kind: KindLowReserve, text: "Balance too low to meet minimum reserve requirements."},
	{tx: "tx_bad_auth", kind: KindBadAuth, text: "Transaction could not be authorized. Please reconnect your wallet and try again."},
}

type keywordRule struct {
	keyword string
	kind    Kind
	text    string
}

var keywordRules = []keywordRule{
	{keyword: "insufficient", kind: KindUnderfunded, text: "Insufficient balance."},
	{keyword: "destination", kind: KindInvalidDestination, text: "Invalid destination account."},
	{keyword: "max 28 bytes", kind: KindMemoTooLong, text: "Message is too long (maximum 28 characters)."},
	// txnbuild's memo check, hit by multi-byte memos within the character limit
	{keyword: "can't be longer than 28 bytes", kind: KindMemoTooLong, text: "Message is too long (maximum 28 characters)."},
}

// Classify turns a submission error into a user-facing message. Structured
// ledger result codes are consulted first, then keywords in the error text,
// and anything else is shown as the raw error text.
func Classify(err error) Message {
	if err == nil {
		return Message{Kind: KindGeneric, Text: failurePrefix + "Please try again."}
	}

	var le *stellar.LedgerError
	if errors.As(err, &le) {
		op, tx := le.OperationCode(), le.TransactionCode
		for _, r := range codeRules {
			if (r.op != "" && r.op == op) || (r.tx != "" && r.tx == tx) {
				return Message{Kind: r.kind, Text: failurePrefix + r.text}
			}
		}
	}

	text := err.Error()
	for _, r := range keywordRules {
		if strings.Contains(text, r.keyword) {
			return Message{Kind: r.kind, Text: failurePrefix + r.text}
		}
	}

	if text == "" {
		text = "Please try again."
	}
	return Message{Kind: KindGeneric, Text: failurePrefix + text}
}
