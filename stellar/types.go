package stellar

import (
	"fmt"
	"strings"
	"time"
)

// Network selects the Horizon instance, passphrase and explorer.
type Network string

const (
	Testnet Network = "testnet"
	Public  Network = "public"
)

// LinkKind is the explorer page type.
type LinkKind string

const (
	LinkTx      LinkKind = "tx"
	LinkAccount LinkKind = "account"
)

// Asset is a non-native balance line.
type Asset struct {
	Code    string
	Issuer  string
	Balance string
}

// Balance is an account's native balance plus its other assets.
type Balance struct {
	Address  string
	Native   string
	Assets   []Asset
	LoadedAt time.Time
}

// PaymentParams describes a native payment.
type PaymentParams struct {
	From   string
	To     string
	Amount string
	Memo   string
}

// PaymentResult is what the ledger reported for a submitted payment.
type PaymentResult struct {
	Hash      string
	Succeeded bool
}

// TransactionRecord is a read-only projection of a payment-like operation.
type TransactionRecord struct {
	ID        string
	Kind      string
	Amount    string
	AssetCode string
	From      string
	To        string
	Timestamp time.Time
	Hash      string
}

// LedgerError is a rejection reported by Horizon, with the result codes
// when the ledger provided them.
type LedgerError struct {
	Status          int
	Title           string
	Detail          string
	TransactionCode string
	OperationCodes  []string
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(e.Title)
	if e.Title == "" {
		b.WriteString(fmt.Sprintf("horizon error (status %d)", e.Status))
	}
	if e.TransactionCode != "" {
		b.WriteString(": " + e.TransactionCode)
	}
	if len(e.OperationCodes) > 0 {
		b.WriteString(" [" + strings.Join(e.OperationCodes, ", ") + "]")
	}
	if e.Detail != "" && e.TransactionCode == "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

// OperationCode is the first operation result code, or "".
func (e *LedgerError) OperationCode() string {
	if len(e.OperationCodes) == 0 {
		return ""
	}
	return e.OperationCodes[0]
}
