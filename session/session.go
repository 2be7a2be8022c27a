// Package session tracks the wallet connection lifecycle:
// Disconnected -> Connecting -> Connected -> Disconnected.
package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"make-it-right/wallet"
)

// State is a step of the connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Connector is the wallet side of a session.
type Connector interface {
	Connect(ctx context.Context) (string, error)
	Disconnect()
}

// ErrBusy is returned by Begin when a session is already connecting or connected.
var ErrBusy = errors.New("wallet session already active")

// Session is the connection state of one wallet. It is driven from the
// update loop and is not safe for concurrent use.
type Session struct {
	connector Connector
	state     State
	address   string
}

// New returns a disconnected session over c.
func New(c Connector) *Session {
	return &Session{connector: c}
}

// Begin moves Disconnected to Connecting.
func (s *Session) Begin() error {
	if s.state != Disconnected {
		return errors.Wrapf(ErrBusy, "state %s", s.state)
	}
	s.state = Connecting
	return nil
}

// Dial asks the connector for the account address. It does not touch the
// session state, so it can run off the update loop between Begin and
// Succeed or Fail.
func (s *Session) Dial(ctx context.Context) (string, error) {
	return s.connector.Connect(ctx)
}

// Succeed moves Connecting to Connected with address. It reports false
// when the session was not connecting, e.g. after a disconnect raced the dial.
func (s *Session) Succeed(address string) bool {
	if s.state != Connecting {
		return false
	}
	s.state = Connected
	s.address = address
	return true
}

// Fail moves Connecting back to Disconnected and classifies err.
func (s *Session) Fail(err error) ConnectError {
	if s.state == Connecting {
		s.state = Disconnected
	}
	s.address = ""
	return Classify(err)
}

// Disconnect clears the session and tells the connector. Calling it on a
// disconnected session is a no-op.
func (s *Session) Disconnect() {
	if s.state == Disconnected {
		return
	}
	s.state = Disconnected
	s.address = ""
	s.connector.Disconnect()
}

func (s *Session) State() State { return s.state }
func (s *Session) Address() string { return s.address }
func (s *Session) Connected() bool { return s.state == Connected }
func (s *Session) Connecting() bool { return s.state == Connecting }
func (s *Session) Connector() Connector { return s.connector }

// ConnectKind is the class of a connect failure.
type ConnectKind int

const (
	ConnectGeneric ConnectKind = iota
	ConnectNotInstalled
	ConnectLocked
)

// ConnectError is a classified connect failure.
type ConnectError struct {
	Kind    ConnectKind
	Message string
	Err     error
}

func (e ConnectError) Error() string { return e.Message }
func (e ConnectError) Unwrap() error { return e.Err }

// Classify maps a connector error onto the not-installed / locked / generic
// classes. Sentinels from the wallet package are matched first, then the
// message text for connectors that only return strings.
func Classify(err error) ConnectError {
	if err == nil {
		err = errors.New("Failed to connect wallet")
	}
	msg := err.Error()

	switch {
	case errors.Is(err, wallet.ErrNotInstalled) || strings.Contains(msg, "not installed"):
		return ConnectError{
			Kind: ConnectNotInstalled,
			Message: "Wallet keystore is not installed.\n\n" +
				"Create one first with `make-it-right keystore new`\n" +
				"or import a secret with `make-it-right keystore import`.",
			Err: err,
		}
	case errors.Is(err, wallet.ErrLocked) || strings.Contains(msg, "not connected") || strings.Contains(msg, "not unlocked"):
		return ConnectError{
			Kind:    ConnectLocked,
			Message: "Wallet is not connected or unlocked.\n\nUnlock your keystore and try again.",
			Err:     err,
		}
	default:
		return ConnectError{Kind: ConnectGeneric, Message: msg, Err: err}
	}
}
