package kwire

import (
	"errors"
	"fmt"

	"github.com/pior/kwire/api"
	"github.com/pior/kwire/wire"
)

// Error types for the transport.
// As with broker error codes, every type reports whether the connection it came
// from can still be used.

var (
	// ErrIncompatibleVersion means the client and the broker share no version of
	// an api. Nothing was sent.
	ErrIncompatibleVersion = errors.New("kwire: incompatible version")

	// ErrUnexpectedResponse means a response arrived with a correlation id that
	// was never issued on the connection.
	ErrUnexpectedResponse = errors.New("kwire: unexpected response")

	// ErrTransportFailure covers I/O errors and framing violations. Both are fatal
	// to the connection.
	ErrTransportFailure = errors.New("kwire: transport failure")

	ErrConnClosed   = errors.New("kwire: connection closed")
	ErrClientClosed = errors.New("kwire: client closed")
	ErrNoBrokers    = errors.New("kwire: no brokers available")
)

// VersionError reports a failed version negotiation.
//
// Connection handling: the connection is fine, the call is not possible on it.
type VersionError struct {
	Key    api.Key
	Client wire.VersionRange
	Server wire.VersionRange
	Known  bool // whether the broker advertised the api at all
}

func (e *VersionError) Error() string {
	if !e.Known {
		return fmt.Sprintf("kwire: broker does not support %s", e.Key)
	}
	return fmt.Sprintf("kwire: no common version for %s: client %s, broker %s", e.Key, e.Client, e.Server)
}

func (e *VersionError) Unwrap() error {
	return ErrIncompatibleVersion
}

func (e *VersionError) ShouldCloseConnection() bool {
	return false
}

// TransportError wraps a failure of the underlying stream or of the framing.
// Every call pending on the connection receives it.
//
// Connection handling: the connection is already torn down.
type TransportError struct {
	Op  string // dial, read, write, frame, handshake
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kwire: transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransportFailure) match any TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}

func (e *TransportError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by every error type of this module.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection unusable.
//
// Returns false for:
//   - nil
//   - *VersionError
//   - *wire.DecodeError (only the message is lost)
//   - api.ErrorCode
//   - context cancellation of a single call
//
// Unknown errors are treated as fatal.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return !isContextError(err)
}
