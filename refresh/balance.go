package refresh

import "make-it-right/stellar"

// Balance holds the navbar and balance-card value for the connected address.
type Balance struct {
	seq     Sequencer
	address string
	value   *stellar.Balance
	loading bool
	err     error
}

// Begin starts a fetch for address and returns the token the response must carry.
func (b *Balance) Begin(address string) Token {
	b.address = address
	b.loading = true
	return b.seq.Next()
}

// Resolve applies a fetch result. Superseded responses are dropped and
// Resolve returns false. A failed fetch keeps the previous value.
func (b *Balance) Resolve(t Token, bal stellar.Balance, err error) bool {
	if !b.seq.Latest(t) {
		return false
	}
	b.loading = false
	b.err = err
	if err == nil {
		b.value = &bal
	}
	return true
}

// Reset forgets the value and invalidates any fetch still in flight.
func (b *Balance) Reset() {
	b.seq.Next()
	b.address = ""
	b.value = nil
	b.loading = false
	b.err = nil
}

// Value is the last applied balance, or nil before the first success.
func (b *Balance) Value() *stellar.Balance { return b.value }

// Native is the native balance of the last applied value, or "".
func (b *Balance) Native() string {
	if b.value == nil {
		return ""
	}
	return b.value.Native
}

func (b *Balance) Address() string { return b.address }
func (b *Balance) Loading() bool { return b.loading }
func (b *Balance) Err() error { return b.err }
