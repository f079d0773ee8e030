package wire

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Decoder reads wire values from a byte slice.
//
// Reads return explicit errors. Primitive reads report bare sentinel errors; the
// schema walker attaches the field path and offset.
type Decoder struct {
	buf     []byte
	off     int
	version int16
	compact bool
}

// NewDecoder returns a decoder over buf for the given version and mode.
func NewDecoder(buf []byte, version int16, compact bool) *Decoder {
	return &Decoder{buf: buf, version: version, compact: compact}
}

func (d *Decoder) Version() int16 { return d.version }
func (d *Decoder) Compact() bool  { return d.compact }
func (d *Decoder) Offset() int    { return d.off }
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidEncoding
	}
	if d.Remaining() < n {
		return nil, ErrTruncatedInput
	}
	p := d.buf[d.off : d.off+n]
	d.off += n
	return p, nil
}

func (d *Decoder) Int8() (int8, error) {
	p, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return int8(p[0]), nil
}

func (d *Decoder) Int16() (int16, error) {
	p, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p)), nil
}

func (d *Decoder) Int32() (int32, error) {
	p, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

func (d *Decoder) Int64() (int64, error) {
	p, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p)), nil
}

// Bool accepts any non-zero byte as true.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Int8()
	return v != 0, err
}

func (d *Decoder) Uvarint32() (uint32, error) {
	v, n, err := Uvarint32(d.buf[d.off:])
	if err != nil {
		return 0, err
	}
	d.off += n
	return v, nil
}

func (d *Decoder) Uvarint64() (uint64, error) {
	v, n, err := Uvarint64(d.buf[d.off:])
	if err != nil {
		return 0, err
	}
	d.off += n
	return v, nil
}

func (d *Decoder) UUID() (uuid.UUID, error) {
	var id uuid.UUID
	p, err := d.take(len(id))
	if err != nil {
		return id, err
	}
	copy(id[:], p)
	return id, nil
}

// Raw returns the next n bytes as a copy.
func (d *Decoder) Raw(n int) ([]byte, error) {
	p, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// stringLen reads a string length prefix; -1 means null.
func (d *Decoder) stringLen() (int, error) {
	if d.compact {
		n, err := d.Uvarint32()
		if err != nil {
			return 0, err
		}
		return int(n) - 1, nil
	}
	n, err := d.Int16()
	if err != nil {
		return 0, err
	}
	if n < -1 {
		return 0, ErrInvalidEncoding
	}
	return int(n), nil
}

// length reads a bytes or array length prefix; -1 means null.
func (d *Decoder) length() (int, error) {
	if d.compact {
		n, err := d.Uvarint32()
		if err != nil {
			return 0, err
		}
		return int(n) - 1, nil
	}
	n, err := d.Int32()
	if err != nil {
		return 0, err
	}
	if n < -1 {
		return 0, ErrInvalidEncoding
	}
	return int(n), nil
}

func (d *Decoder) stringBody(n int) (string, error) {
	p, err := d.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidEncoding
	}
	return string(p), nil
}

// String reads a non-null string. A null marker is an ErrInvalidEncoding.
func (d *Decoder) String() (string, error) {
	n, err := d.stringLen()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", ErrInvalidEncoding
	}
	return d.stringBody(n)
}

func (d *Decoder) NullableString() (*string, error) {
	n, err := d.stringLen()
	if err != nil || n < 0 {
		return nil, err
	}
	s, err := d.stringBody(n)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Bytes reads a non-null blob. The result is never nil.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrInvalidEncoding
	}
	p, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, n), p...), nil
}

// NullableBytes reads a blob; null is returned as a nil slice.
func (d *Decoder) NullableBytes() ([]byte, error) {
	n, err := d.length()
	if err != nil || n < 0 {
		return nil, err
	}
	p, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, n), p...), nil
}

// ArrayLen reads an element count. null reports whether the array was null.
// Counts larger than the remaining input are rejected before any allocation.
func (d *Decoder) ArrayLen() (n int, null bool, err error) {
	n, err = d.length()
	if err != nil {
		return 0, false, err
	}
	if n < 0 {
		return 0, true, nil
	}
	if n > d.Remaining() {
		return 0, false, ErrTruncatedInput
	}
	return n, false, nil
}
