package refresh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"make-it-right/payment"
	"make-it-right/stellar"
)

const me = "GME"

func TestSequencer(t *testing.T) {
	var s Sequencer
	assert.False(t, s.Latest(0))

	a := s.Next()
	assert.True(t, s.Latest(a))

	b := s.Next()
	assert.Greater(t, uint64(b), uint64(a))
	assert.False(t, s.Latest(a))
	assert.True(t, s.Latest(b))
}

// Two overlapping fetches for the same address: the second is issued last
// but its response arrives first. The later request wins.
func TestBalanceLastRequestWins(t *testing.T) {
	var b Balance
	first := b.Begin(me)
	second := b.Begin(me)

	assert.True(t, b.Resolve(second, stellar.Balance{Address: me, Native: "20"}, nil))
	assert.False(t, b.Resolve(first, stellar.Balance{Address: me, Native: "10"}, nil))

	assert.Equal(t, "20", b.Native())
	assert.False(t, b.Loading())
}

func TestBalanceStaleResponseWhileLoading(t *testing.T) {
	var b Balance
	first := b.Begin(me)
	b.Begin(me)

	assert.False(t, b.Resolve(first, stellar.Balance{Native: "10"}, nil))
	assert.Empty(t, b.Native())
	assert.True(t, b.Loading())
}

func TestBalanceErrorKeepsValue(t *testing.T) {
	var b Balance
	b.Resolve(b.Begin(me), stellar.Balance{Native: "5"}, nil)

	require.True(t, b.Resolve(b.Begin(me), stellar.Balance{}, errors.New("boom")))
	assert.Equal(t, "5", b.Native())
	assert.EqualError(t, b.Err(), "boom")

	b.Resolve(b.Begin(me), stellar.Balance{Native: "6"}, nil)
	assert.NoError(t, b.Err())
	assert.Equal(t, "6", b.Native())
}

func TestBalanceReset(t *testing.T) {
	var b Balance
	inflight := b.Begin(me)
	b.Reset()

	assert.False(t, b.Resolve(inflight, stellar.Balance{Native: "1"}, nil))
	assert.Nil(t, b.Value())
	assert.Empty(t, b.Address())
}

func TestHistory(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, stellar.DefaultHistoryLimit, h.Limit())
	assert.False(t, h.Empty())

	records := []stellar.TransactionRecord{
		{ID: "2", From: me, To: "GYOU"},
		{ID: "1", From: "GYOU", To: me},
	}
	require.True(t, h.Resolve(h.Begin(me), records, nil))
	assert.Equal(t, records, h.Records())
	assert.Equal(t, Sent, h.Direction(records[0]))
	assert.Equal(t, Received, h.Direction(records[1]))

	t.Run("failure keeps the list", func(t *testing.T) {
		h.Resolve(h.Begin(me), nil, errors.New("horizon down"))
		assert.Equal(t, records, h.Records())
		assert.Error(t, h.Err())
	})

	t.Run("refresh replaces the list", func(t *testing.T) {
		next := []stellar.TransactionRecord{{ID: "3", From: me}}
		h.Resolve(h.Begin(me), next, nil)
		assert.Equal(t, next, h.Records())
	})

	t.Run("empty result", func(t *testing.T) {
		h.Resolve(h.Begin(me), []stellar.TransactionRecord{}, nil)
		assert.True(t, h.Empty())
	})
}

func TestHistoryLastRequestWins(t *testing.T) {
	h := NewHistory(5)
	first := h.Begin(me)
	second := h.Begin(me)

	h.Resolve(second, []stellar.TransactionRecord{{ID: "new"}}, nil)
	assert.False(t, h.Resolve(first, []stellar.TransactionRecord{{ID: "old"}}, nil))
	assert.Equal(t, "new", h.Records()[0].ID)

	h.Reset()
	assert.Nil(t, h.Records())
	assert.False(t, h.Empty())
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()

	var seen []string
	require.NoError(t, n.Subscribe(func(r payment.Receipt) { seen = append(seen, r.Hash) }))

	n.NotifyPaymentSucceeded(payment.Receipt{Hash: "abc123"})

	select {
	case r := <-n.Events():
		assert.Equal(t, "abc123", r.Hash)
	default:
		t.Fatal("expected a queued event")
	}
	assert.Equal(t, []string{"abc123"}, seen)

	select {
	case r := <-n.Events():
		t.Fatalf("unexpected second event %v", r)
	default:
	}
}

func TestNotifierNeverBlocks(t *testing.T) {
	n := NewNotifier()
	for i := 0; i < eventBuffer+3; i++ {
		n.NotifyPaymentSucceeded(payment.Receipt{})
	}
	assert.Len(t, n.Events(), eventBuffer)
}
