package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when the buffer ends before a declared length.
	ErrTruncatedInput = errors.New("wire: truncated input")

	// ErrInvalidEncoding is returned for malformed content: invalid UTF-8, a varint
	// wider than its target, an unknown enum value or a null in a non-nullable slot.
	ErrInvalidEncoding = errors.New("wire: invalid encoding")

	// ErrValueTooLarge is returned by the encoder when a value does not fit its
	// length prefix, for example a standard string longer than 32767 bytes.
	ErrValueTooLarge = errors.New("wire: value too large")
)

// DecodeError reports where a decode failed.
// The connection that produced the bytes remains usable: only the message being
// decoded is lost.
type DecodeError struct {
	Field  string // dotted path of the failing field, empty for top level reads
	Offset int    // byte offset in the message body
	Err    error  // ErrTruncatedInput or ErrInvalidEncoding, possibly wrapped
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns false: framing is intact, only the message is bad.
func (e *DecodeError) ShouldCloseConnection() bool {
	return false
}

// SchemaError is the panic value raised when a schema is used incorrectly, such as
// encoding an unset Versioned field at a version where it is required.
type SchemaError struct {
	Field   string
	Version int16
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("wire: schema misuse on %q at version %d: %s", e.Field, e.Version, e.Reason)
}

func wrapField(name string, off int, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		path := name
		if de.Field != "" {
			path = name + "." + de.Field
		}
		return &DecodeError{Field: path, Offset: de.Offset, Err: de.Err}
	}
	return &DecodeError{Field: name, Offset: off, Err: err}
}
