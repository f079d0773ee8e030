// Package api declares Kafka request and response messages on top of package wire.
//
// Each request type carries its api key, the version range this client
// implements, and the version from which it switches to the flexible (compact)
// encoding. Responses are plain schemas; the transport decodes them with the
// version and mode of the request they answer.
package api

import (
	"fmt"

	"github.com/pior/kwire/wire"
)

// Request is a message sent to a broker.
type Request interface {
	wire.Schema

	// Key identifies the message type.
	Key() Key

	// Versions is the range of versions this client can encode.
	Versions() wire.VersionRange

	// FlexibleVersion is the first version using the compact encoding and the
	// tagged request header.
	FlexibleVersion() int16

	// NewResponse returns an empty response of the matching type.
	NewResponse() Response
}

// Response is a message received from a broker.
type Response interface {
	wire.Schema
}

// Routed is implemented by requests that must reach a broker chosen by key, such
// as group requests addressed by group id.
type Routed interface {
	RoutingKey() string
}

// Unacknowledged is implemented by requests the broker may leave unanswered,
// such as a produce with acks 0.
type Unacknowledged interface {
	ExpectsResponse() bool
}

// ExpectsResponse reports whether the broker answers req.
func ExpectsResponse(req Request) bool {
	if u, ok := req.(Unacknowledged); ok {
		return u.ExpectsResponse()
	}
	return true
}

// IsFlexible reports whether req is encoded in compact mode at version.
func IsFlexible(req Request, version int16) bool {
	return version >= req.FlexibleVersion()
}

func errorCode(p *ErrorCode) wire.Value {
	return wire.Int16((*int16)(p))
}

func versions(lo, hi int16) wire.VersionRange {
	return wire.VersionRange{Min: lo, Max: hi}
}

// IsolationLevel controls the visibility of transactional records.
type IsolationLevel int8

const (
	ReadUncommitted IsolationLevel = 0
	ReadCommitted   IsolationLevel = 1
)

func ParseIsolationLevel(v int8) (IsolationLevel, error) {
	switch l := IsolationLevel(v); l {
	case ReadUncommitted, ReadCommitted:
		return l, nil
	}
	return 0, fmt.Errorf("isolation level %d: %w", v, wire.ErrInvalidEncoding)
}

func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "read_uncommitted"
	case ReadCommitted:
		return "read_committed"
	}
	return fmt.Sprintf("IsolationLevel(%d)", int8(l))
}

func isolationLevel(p *IsolationLevel) wire.Value {
	return wire.Int8Enum(p, ParseIsolationLevel)
}

// CoordinatorType selects which coordinator FindCoordinator looks up.
type CoordinatorType int8

const (
	GroupCoordinator       CoordinatorType = 0
	TransactionCoordinator CoordinatorType = 1
)

func ParseCoordinatorType(v int8) (CoordinatorType, error) {
	switch c := CoordinatorType(v); c {
	case GroupCoordinator, TransactionCoordinator:
		return c, nil
	}
	return 0, fmt.Errorf("coordinator type %d: %w", v, wire.ErrInvalidEncoding)
}

func (c CoordinatorType) String() string {
	switch c {
	case GroupCoordinator:
		return "group"
	case TransactionCoordinator:
		return "transaction"
	}
	return fmt.Sprintf("CoordinatorType(%d)", int8(c))
}

func coordinatorType(p *CoordinatorType) wire.Value {
	return wire.Int8Enum(p, ParseCoordinatorType)
}
