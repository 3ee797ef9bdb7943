package session

import "errors"

// Domain errors
var (
	// ErrNoSession: an operation requiring an active identity was invoked
	// with none present. Always a contract violation at the call site.
	ErrNoSession = errors.New("no active session")
	// ErrSuperseded: a login resolved after a newer login attempt had
	// already been issued; its result was discarded.
	ErrSuperseded = errors.New("login superseded by a newer attempt")
)

// AuthError is an authentication rejection from the identity service. It
// carries the server-provided message verbatim when the response included
// one, else a generic one suitable for display.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// TransportError wraps a network or service-availability failure on a
// remote call. Critical writes (login, register) propagate it; best-effort
// reads degrade instead.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
