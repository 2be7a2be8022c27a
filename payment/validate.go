// Package payment holds the client-side rules for a payment: validation of the
// form inputs, translation of ledger rejections into user-facing messages, and
// the draft that carries a form through one submission attempt.
package payment

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/strkey"
)

// Field names a payment form input.
type Field string

const (
	FieldRecipient Field = "recipient"
	FieldAmount    Field = "amount"
	FieldMemo      Field = "memo"
)

// Code classifies a field failure.
type Code string

const (
	CodeRequired       Code = "Required"
	CodeInvalidAddress Code = "InvalidAddress"
	CodeNotPositive    Code = "NotPositive"
	CodeBelowMinimum   Code = "BelowMinimum"
	CodeTooLong        Code = "TooLong"
)

const (
	// AddressLength is the length of an encoded account id.
	AddressLength = 56
	// AccountPrefix starts every account id on the network.
	AccountPrefix = "G"
	// MaxMemoLength approximates the ledger's 28-byte text memo limit in characters.
	MaxMemoLength = 28
)

// MinimumAmount is the smallest representable unit (one stroop).
var MinimumAmount = decimal.New(1, -7)

// FieldError is a single field failure.
type FieldError struct {
	Code    Code
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ValidationErrors maps a field to its failure. A missing key means the field is valid.
type ValidationErrors map[Field]FieldError

// OK reports whether the form can be submitted.
func (v ValidationErrors) OK() bool { return len(v) == 0 }

// Message returns the failure text for f, or "".
func (v ValidationErrors) Message(f Field) string {
	if e, ok := v[f]; ok {
		return e.Message
	}
	return ""
}

// Has reports whether f failed with code c.
func (v ValidationErrors) Has(f Field, c Code) bool {
	e, ok := v[f]
	return ok && e.Code == c
}

// Validator checks form inputs. The zero value performs the shape-only
// address check; Strict additionally verifies the strkey checksum.
type Validator struct {
	Strict bool
}

// Validate runs all field checks with the default (shape-only) validator.
func Validate(recipient, amount, memo string) ValidationErrors {
	return Validator{}.Validate(recipient, amount, memo)
}

// Validate runs all field checks and collects the failures.
func (v Validator) Validate(recipient, amount, memo string) ValidationErrors {
	errs := ValidationErrors{}
	if fe, ok := v.recipient(recipient); !ok {
		errs[FieldRecipient] = fe
	}
	if fe, ok := checkAmount(amount); !ok {
		errs[FieldAmount] = fe
	}
	if fe, ok := checkMemo(memo); !ok {
		errs[FieldMemo] = fe
	}
	return errs
}

// Recipient is the single-field form of the recipient check.
func (v Validator) Recipient(s string) error {
	if fe, ok := v.recipient(s); !ok {
		return fe
	}
	return nil
}

// Amount is the single-field form of the amount check.
func (v Validator) Amount(s string) error {
	if fe, ok := checkAmount(s); !ok {
		return fe
	}
	return nil
}

// Memo is the single-field form of the memo check.
func (v Validator) Memo(s string) error {
	if fe, ok := checkMemo(s); !ok {
		return fe
	}
	return nil
}

// recipient checks s as typed; surrounding whitespace makes it the wrong length.
func (v Validator) recipient(s string) (FieldError, bool) {
	if strings.TrimSpace(s) == "" {
		return FieldError{Code: CodeInvalidAddress, Message: "Recipient address is required"}, false
	}
	if len(s) != AddressLength || !strings.HasPrefix(s, AccountPrefix) {
		return FieldError{
			Code:    CodeInvalidAddress,
			Message: "Invalid Stellar address (must start with G and be 56 characters)",
		}, false
	}
	if v.Strict && !strkey.IsValidEd25519PublicKey(s) {
		return FieldError{Code: CodeInvalidAddress, Message: "Invalid Stellar address (checksum mismatch)"}, false
	}
	return FieldError{}, true
}

func checkAmount(s string) (FieldError, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldError{Code: CodeRequired, Message: "Amount is required"}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Sign() <= 0 {
		return FieldError{Code: CodeNotPositive, Message: "Amount must be a positive number"}, false
	}
	if d.LessThan(MinimumAmount) {
		return FieldError{Code: CodeBelowMinimum, Message: "Amount is too small (minimum: 0.0000001 XLM)"}, false
	}
	return FieldError{}, true
}

func checkMemo(s string) (FieldError, bool) {
	if utf8.RuneCountInString(s) > MaxMemoLength {
		return FieldError{Code: CodeTooLong, Message: "Message must be 28 characters or less"}, false
	}
	return FieldError{}, true
}
