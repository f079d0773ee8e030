package wire

import "github.com/google/uuid"

// Value is one entry of a field table: something that can write itself to an
// Encoder and read itself back from a Decoder, in whichever mode they carry.
type Value interface {
	Encode(e *Encoder)
	Decode(d *Decoder) error
}

type int8Value struct{ p *int8 }

func (v int8Value) Encode(e *Encoder) { e.PutInt8(*v.p) }
func (v int8Value) Decode(d *Decoder) (err error) {
	*v.p, err = d.Int8()
	return err
}

type int16Value struct{ p *int16 }

func (v int16Value) Encode(e *Encoder) { e.PutInt16(*v.p) }
func (v int16Value) Decode(d *Decoder) (err error) {
	*v.p, err = d.Int16()
	return err
}

type int32Value struct{ p *int32 }

func (v int32Value) Encode(e *Encoder) { e.PutInt32(*v.p) }
func (v int32Value) Decode(d *Decoder) (err error) {
	*v.p, err = d.Int32()
	return err
}

type int64Value struct{ p *int64 }

func (v int64Value) Encode(e *Encoder) { e.PutInt64(*v.p) }
func (v int64Value) Decode(d *Decoder) (err error) {
	*v.p, err = d.Int64()
	return err
}

type boolValue struct{ p *bool }

func (v boolValue) Encode(e *Encoder) { e.PutBool(*v.p) }
func (v boolValue) Decode(d *Decoder) (err error) {
	*v.p, err = d.Bool()
	return err
}

type stringValue struct{ p *string }

func (v stringValue) Encode(e *Encoder) { e.PutString(*v.p) }
func (v stringValue) Decode(d *Decoder) (err error) {
	*v.p, err = d.String()
	return err
}

type nullableStringValue struct{ p **string }

func (v nullableStringValue) Encode(e *Encoder) { e.PutNullableString(*v.p) }
func (v nullableStringValue) Decode(d *Decoder) (err error) {
	*v.p, err = d.NullableString()
	return err
}

// stringPtrValue is a non-null string held through a pointer, for fields that
// only become nullable from some version on. Encoding nil fails.
type stringPtrValue struct{ p **string }

func (v stringPtrValue) Encode(e *Encoder) {
	if *v.p == nil {
		e.fail(ErrInvalidEncoding)
		return
	}
	e.PutString(**v.p)
}

func (v stringPtrValue) Decode(d *Decoder) error {
	s, err := d.String()
	if err != nil {
		return err
	}
	*v.p = &s
	return nil
}

type bytesValue struct {
	p        *[]byte
	nullable bool
}

func (v bytesValue) Encode(e *Encoder) {
	if v.nullable {
		e.PutNullableBytes(*v.p)
	} else {
		e.PutBytes(*v.p)
	}
}

func (v bytesValue) Decode(d *Decoder) (err error) {
	if v.nullable {
		*v.p, err = d.NullableBytes()
	} else {
		*v.p, err = d.Bytes()
	}
	return err
}

type uuidValue struct{ p *uuid.UUID }

func (v uuidValue) Encode(e *Encoder) { e.PutUUID(*v.p) }
func (v uuidValue) Decode(d *Decoder) (err error) {
	*v.p, err = d.UUID()
	return err
}

func Int8(p *int8) Value                { return int8Value{p} }
func Int16(p *int16) Value              { return int16Value{p} }
func Int32(p *int32) Value              { return int32Value{p} }
func Int64(p *int64) Value              { return int64Value{p} }
func Bool(p *bool) Value                { return boolValue{p} }
func String(p *string) Value            { return stringValue{p} }
func NullableString(p **string) Value   { return nullableStringValue{p} }
func StringPtr(p **string) Value        { return stringPtrValue{p} }
func Bytes(p *[]byte) Value             { return bytesValue{p: p} }
func NullableBytes(p *[]byte) Value     { return bytesValue{p: p, nullable: true} }
func UUID(p *uuid.UUID) Value           { return uuidValue{p} }
func Struct(s Schema) Value             { return structValue{s} }

type structValue struct{ s Schema }

func (v structValue) Encode(e *Encoder)       { Encode(e, v.s) }
func (v structValue) Decode(d *Decoder) error { return Decode(d, v.s) }

// Int8Enum binds an int8 backed enum. parse maps a wire value to a known member
// and must return an error wrapping ErrInvalidEncoding for unknown values.
func Int8Enum[T ~int8](p *T, parse func(int8) (T, error)) Value {
	return int8Enum[T]{p, parse}
}

type int8Enum[T ~int8] struct {
	p     *T
	parse func(int8) (T, error)
}

func (v int8Enum[T]) Encode(e *Encoder) { e.PutInt8(int8(*v.p)) }
func (v int8Enum[T]) Decode(d *Decoder) error {
	raw, err := d.Int8()
	if err != nil {
		return err
	}
	*v.p, err = v.parse(raw)
	return err
}

// Array binds a non-nullable array. A nil slice is written as empty and a null
// array on the wire is an ErrInvalidEncoding. elem adapts one element; both
// wire.Int32 and a func returning wire.Struct fit.
func Array[T any](p *[]T, elem func(*T) Value) Value {
	return arrayValue[T]{p: p, elem: elem}
}

// NullableArray binds an array where a nil slice and null are the same thing.
func NullableArray[T any](p *[]T, elem func(*T) Value) Value {
	return arrayValue[T]{p: p, elem: elem, nullable: true}
}

type arrayValue[T any] struct {
	p        *[]T
	elem     func(*T) Value
	nullable bool
}

func (v arrayValue[T]) Encode(e *Encoder) {
	s := *v.p
	e.PutArrayLen(len(s), v.nullable && s == nil)
	for i := range s {
		v.elem(&s[i]).Encode(e)
	}
}

func (v arrayValue[T]) Decode(d *Decoder) error {
	n, null, err := d.ArrayLen()
	if err != nil {
		return err
	}
	if null {
		if !v.nullable {
			return ErrInvalidEncoding
		}
		*v.p = nil
		return nil
	}
	s := make([]T, n)
	for i := range s {
		if err := v.elem(&s[i]).Decode(d); err != nil {
			return err
		}
	}
	*v.p = s
	return nil
}
