package send

import (
	"strings"

	"make-it-right/helpers"
	"make-it-right/payment"
	"make-it-right/stellar"
	"make-it-right/styles"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// State is everything the send panel shows.
type State struct {
	Draft   *payment.Draft
	Form    *huh.Form // nil unless the form is open
	Balance string    // native balance, "" when unknown
	TxURL   string    // explorer page of Draft.Hash
	Spinner string
	Copied  string
	Width   int
}

// NewForm builds the payment form bound to d's fields.
func NewForm(d *payment.Draft, v payment.Validator, balance string) *huh.Form {
	available := "Available: " + helpers.FormatXLM(balance)
	if balance == "" {
		available = "Balance not loaded"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recipient").
				Description("Stellar address starting with G (Ctrl+v to paste)").
				Value(&d.Recipient).
				Placeholder("G...").
				CharLimit(payment.AddressLength).
				Validate(v.Recipient),

			huh.NewInput().
				Title("Amount (XLM)").
				Description(available).
				Value(&d.Amount).
				Placeholder("0.0").
				Validate(v.Amount),

			huh.NewInput().
				Title("Message").
				Description("Optional memo, up to 28 characters").
				Value(&d.Memo).
				Placeholder("Sorry for ...").
				Validate(v.Memo),
		),
	).WithTheme(huh.ThemeCatppuccin())

	form.Init()
	return form
}

// Render renders the send panel: the form while editing, otherwise the
// last outcome and a prompt to start a new payment.
func Render(s State) string {
	h := styles.TitleStyle.Render("Send an Apology")
	lines := []string{h, ""}

	if s.Form != nil {
		lines = append(lines, s.Form.View())
		return strings.Join(lines, "\n")
	}

	d := s.Draft
	if d.Submitting {
		lines = append(lines, s.Spinner+" Sending payment…")
		return strings.Join(lines, "\n")
	}

	if d.Alert != nil {
		lines = append(lines, styles.Alert(string(d.Alert.Kind), d.Alert.Text, helpers.Max(0, s.Width-8)), "")
	}

	if d.Hash != "" {
		lines = append(lines, renderReceipt(d.Hash, s.TxURL, s.Copied), "")
	}

	for _, f := range []payment.Field{payment.FieldRecipient, payment.FieldAmount, payment.FieldMemo} {
		if msg := d.Errors.Message(f); msg != "" {
			lines = append(lines, styles.ErrorStyle.Render("• "+msg))
		}
	}

	button := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF7DB")).
		Background(lipgloss.Color("#F25D94")).
		Padding(0, 3).
		Render("Send Payment")
	lines = append(lines, button, styles.MutedStyle.Render("Press Enter to fill in a payment"))

	return strings.Join(lines, "\n")
}

func renderReceipt(hash, url, copied string) string {
	lines := []string{
		styles.SuccessStyle.Render("Transaction hash"),
		lipgloss.NewStyle().Foreground(styles.CText).Render(hash),
		styles.Hyperlink(url, lipgloss.NewStyle().Foreground(styles.CAccent2).Underline(true).Render("View on Stellar Expert")),
	}
	if copied != "" {
		lines = append(lines, styles.SuccessStyle.Render(copied))
	}
	if qr := stellar.GenerateQRCode(url); qr != "" {
		lines = append(lines, "", qr)
	}
	return strings.Join(lines, "\n")
}

// Nav returns the navigation bar for the send view
func Nav(width int, editing bool) string {
	var left string
	if editing {
		left = strings.Join([]string{
			styles.Key("Tab") + " next field",
			styles.Key("Enter") + " next/send",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("Enter") + " new payment",
			styles.Key("Y") + " copy hash",
			styles.Key("tab") + " next tab",
			styles.Key("x") + " disconnect",
			styles.Key("l") + " logger",
			styles.Key("q") + " quit",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}
