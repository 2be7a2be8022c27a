package payment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"make-it-right/stellar"
)

// AlertKind is the tone of the alert shown above the form.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Alert is the last outcome shown above the form.
type Alert struct {
	Kind AlertKind
	Text string
}

// Request is one submission attempt. It is built fresh for every submit and
// never changed afterwards.
type Request struct {
	AttemptID uuid.UUID
	Sender    string
	Recipient string
	Amount    string
	Memo      string
}

// Params converts the request into the ledger client's payment description.
func (r Request) Params() stellar.PaymentParams {
	return stellar.PaymentParams{From: r.Sender, To: r.Recipient, Amount: r.Amount, Memo: r.Memo}
}

// Receipt describes a payment the ledger accepted.
type Receipt struct {
	AttemptID uuid.UUID
	Sender    string
	Recipient string
	Amount    string
	Hash      string
}

// SuccessNotifier is told about every accepted payment.
type SuccessNotifier interface {
	NotifyPaymentSucceeded(Receipt)
}

// ErrNotAccepted is reported when the ledger answered without error but did
// not mark the transaction successful.
var ErrNotAccepted = errors.New("transaction was not accepted by the network")

// Draft is the payment form's state across one or more submission attempts.
type Draft struct {
	Recipient string
	Amount    string
	Memo      string

	Errors     ValidationErrors
	Submitting bool
	Alert      *Alert
	Hash       string

	// attempt is the request whose result Complete will accept
	attempt uuid.UUID

	validator Validator
	notifier  SuccessNotifier
}

// NewDraft returns an empty draft. notifier may be nil.
func NewDraft(v Validator, notifier SuccessNotifier) *Draft {
	return &Draft{Errors: ValidationErrors{}, validator: v, notifier: notifier}
}

// Prepare validates the fields and builds the request for sender. It returns
// false, leaving Errors set, when the draft cannot be submitted. A draft
// that is already submitting is refused outright.
func (d *Draft) Prepare(sender string) (Request, bool) {
	if d.Submitting {
		return Request{}, false
	}
	d.Errors = d.validator.Validate(d.Recipient, d.Amount, d.Memo)
	if !d.Errors.OK() {
		return Request{}, false
	}

	d.Alert = nil
	d.Hash = ""
	d.Submitting = true
	d.attempt = uuid.New()
	return Request{
		AttemptID: d.attempt,
		Sender:    sender,
		Recipient: d.Recipient,
		Amount:    strings.TrimSpace(d.Amount),
		Memo:      d.Memo,
	}, true
}

// InFlight reports whether id is the submission the draft is waiting on.
func (d *Draft) InFlight(id uuid.UUID) bool {
	return d.Submitting && id != uuid.Nil && id == d.attempt
}

// Complete records the outcome of req. Success clears the fields and
// notifies once; failure keeps the fields so the user can correct them.
// Results for any request other than the one in flight are ignored.
// It reports whether the payment was accepted.
func (d *Draft) Complete(req Request, res stellar.PaymentResult, err error) bool {
	if !d.InFlight(req.AttemptID) {
		return false
	}
	d.Submitting = false
	d.attempt = uuid.Nil

	if err == nil && !res.Succeeded {
		err = ErrNotAccepted
	}
	if err != nil {
		msg := Classify(err)
		d.Alert = &Alert{Kind: AlertError, Text: msg.Text}
		return false
	}

	d.Recipient, d.Amount, d.Memo = "", "", ""
	d.Errors = ValidationErrors{}
	d.Hash = res.Hash
	d.Alert = &Alert{Kind: AlertSuccess, Text: "Sent successfully."}

	if d.notifier != nil {
		d.notifier.NotifyPaymentSucceeded(Receipt{
			AttemptID: req.AttemptID,
			Sender:    req.Sender,
			Recipient: req.Recipient,
			Amount:    req.Amount,
			Hash:      res.Hash,
		})
	}
	return true
}

// Reset drops every field and outcome, e.g. after the wallet disconnects.
func (d *Draft) Reset() {
	d.Recipient, d.Amount, d.Memo = "", "", ""
	d.Errors = ValidationErrors{}
	d.Submitting = false
	d.attempt = uuid.Nil
	d.Alert = nil
	d.Hash = ""
}
