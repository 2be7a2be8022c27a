package refresh

import "make-it-right/stellar"

// Direction is how a record relates to the connected address.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// History holds the most recent page of transfers for the connected address.
// Each applied fetch replaces the whole list.
type History struct {
	seq     Sequencer
	limit   int
	address string
	records []stellar.TransactionRecord
	loaded  bool
	loading bool
	err     error
}

// NewHistory returns a controller fetching pages of limit records.
// A non-positive limit uses stellar.DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = stellar.DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Begin starts a fetch for address and returns the token the response must carry.
func (h *History) Begin(address string) Token {
	h.address = address
	h.loading = true
	return h.seq.Next()
}

// Resolve applies a fetch result. Superseded responses are dropped and
// Resolve returns false. A failed fetch keeps the previous list.
func (h *History) Resolve(t Token, records []stellar.TransactionRecord, err error) bool {
	if !h.seq.Latest(t) {
		return false
	}
	h.loading = false
	h.err = err
	if err == nil {
		h.records = records
		h.loaded = true
	}
	return true
}

// Reset forgets the list and invalidates any fetch still in flight.
func (h *History) Reset() {
	h.seq.Next()
	h.address = ""
	h.records = nil
	h.loaded = false
	h.loading = false
	h.err = nil
}

// Direction reports Sent when the connected address is the record's sender.
func (h *History) Direction(r stellar.TransactionRecord) Direction {
	if r.From != "" && r.From == h.address {
		return Sent
	}
	return Received
}

// Empty reports whether a fetch succeeded and returned no records.
func (h *History) Empty() bool { return h.loaded && len(h.records) == 0 }

func (h *History) Records() []stellar.TransactionRecord { return h.records }
func (h *History) Limit() int { return h.limit }
func (h *History) Address() string { return h.address }
func (h *History) Loading() bool { return h.loading }
func (h *History) Err() error { return h.err }
