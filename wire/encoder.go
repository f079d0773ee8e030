package wire

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// Encoder appends the wire representation of values to a byte slice.
//
// The encoder is sticky: the first error is kept and every later write becomes a
// no-op, so a whole message can be written before checking Err once.
type Encoder struct {
	buf     []byte
	version int16
	compact bool
	err     error
}

// NewEncoder returns an encoder appending to buf for the given version and mode.
func NewEncoder(buf []byte, version int16, compact bool) *Encoder {
	return &Encoder{buf: buf, version: version, compact: compact}
}

func (e *Encoder) Bytes() []byte  { return e.buf }
func (e *Encoder) Err() error     { return e.err }
func (e *Encoder) Version() int16 { return e.version }
func (e *Encoder) Compact() bool  { return e.compact }
func (e *Encoder) Len() int       { return len(e.buf) }

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) PutInt8(v int8) {
	if e.err == nil {
		e.buf = append(e.buf, byte(v))
	}
}

func (e *Encoder) PutInt16(v int16) {
	if e.err == nil {
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(v))
	}
}

func (e *Encoder) PutInt32(v int32) {
	if e.err == nil {
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(v))
	}
}

func (e *Encoder) PutInt64(v int64) {
	if e.err == nil {
		e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v))
	}
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutInt8(1)
	} else {
		e.PutInt8(0)
	}
}

func (e *Encoder) PutUvarint(v uint64) {
	if e.err == nil {
		e.buf = AppendUvarint(e.buf, v)
	}
}

func (e *Encoder) PutUUID(v uuid.UUID) {
	e.PutRaw(v[:])
}

// PutRaw appends p without any length prefix.
func (e *Encoder) PutRaw(p []byte) {
	if e.err == nil {
		e.buf = append(e.buf, p...)
	}
}

// PutString writes a non-null string.
func (e *Encoder) PutString(s string) {
	if e.compact {
		e.PutUvarint(uint64(len(s)) + 1)
	} else {
		if len(s) > math.MaxInt16 {
			e.fail(ErrValueTooLarge)
			return
		}
		e.PutInt16(int16(len(s)))
	}
	if e.err == nil {
		e.buf = append(e.buf, s...)
	}
}

// PutNullableString writes s, or the null marker when s is nil.
func (e *Encoder) PutNullableString(s *string) {
	if s != nil {
		e.PutString(*s)
		return
	}
	if e.compact {
		e.PutUvarint(0)
	} else {
		e.PutInt16(-1)
	}
}

// PutBytes writes p as a non-null blob; a nil slice is written as empty.
func (e *Encoder) PutBytes(p []byte) {
	e.putLength(len(p))
	e.PutRaw(p)
}

// PutNullableBytes writes p, or the null marker when p is nil.
func (e *Encoder) PutNullableBytes(p []byte) {
	if p == nil {
		e.putNull()
		return
	}
	e.PutBytes(p)
}

// PutArrayLen writes an array element count, or the null marker when null is set.
func (e *Encoder) PutArrayLen(n int, null bool) {
	if null {
		e.putNull()
		return
	}
	e.putLength(n)
}

func (e *Encoder) putLength(n int) {
	if n > math.MaxInt32-1 {
		e.fail(ErrValueTooLarge)
		return
	}
	if e.compact {
		e.PutUvarint(uint64(n) + 1)
	} else {
		e.PutInt32(int32(n))
	}
}

func (e *Encoder) putNull() {
	if e.compact {
		e.PutUvarint(0)
	} else {
		e.PutInt32(-1)
	}
}
