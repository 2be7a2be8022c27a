// Package refresh keeps the derived account views (balance and history) in
// step with the wallet. Every fetch is tagged with a token from a Sequencer
// and only the response to the most recently issued token is applied, so
// overlapping fetches resolve as last-request-wins whatever order the
// responses arrive in.
package refresh

// Token identifies one issued fetch. The zero Token is never issued.
type Token uint64

// Sequencer issues monotonically increasing tokens for one kind of fetch.
// It is not safe for concurrent use; it belongs to the update loop.
type Sequencer struct {
	last Token
}

// Next issues a new token and supersedes every earlier one.
func (s *Sequencer) Next() Token {
	s.last++
	return s.last
}

// Latest reports whether t is the most recently issued token.
func (s *Sequencer) Latest(t Token) bool {
	return t != 0 && t == s.last
}
