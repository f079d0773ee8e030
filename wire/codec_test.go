package wire

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEncoderStrings(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
		write   func(e *Encoder)
		want    []byte
	}{
		{"standard string", false, func(e *Encoder) { e.PutString("ab") }, []byte{0, 2, 'a', 'b'}},
		{"compact string", true, func(e *Encoder) { e.PutString("ab") }, []byte{3, 'a', 'b'}},
		{"standard empty", false, func(e *Encoder) { e.PutString("") }, []byte{0, 0}},
		{"compact empty", true, func(e *Encoder) { e.PutString("") }, []byte{1}},
		{"standard null", false, func(e *Encoder) { e.PutNullableString(nil) }, []byte{0xff, 0xff}},
		{"compact null", true, func(e *Encoder) { e.PutNullableString(nil) }, []byte{0}},
		{"standard bytes", false, func(e *Encoder) { e.PutBytes([]byte{9}) }, []byte{0, 0, 0, 1, 9}},
		{"compact bytes", true, func(e *Encoder) { e.PutBytes([]byte{9}) }, []byte{2, 9}},
		{"standard null bytes", false, func(e *Encoder) { e.PutNullableBytes(nil) }, []byte{0xff, 0xff, 0xff, 0xff}},
		{"compact null bytes", true, func(e *Encoder) { e.PutNullableBytes(nil) }, []byte{0}},
		{"standard null array", false, func(e *Encoder) { e.PutArrayLen(0, true) }, []byte{0xff, 0xff, 0xff, 0xff}},
		{"compact array", true, func(e *Encoder) { e.PutArrayLen(2, false) }, []byte{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder(nil, 0, tt.compact)
			tt.write(e)
			require.NoError(t, e.Err())
			assert.Equal(t, tt.want, e.Bytes())
		})
	}
}

func TestEncoderIntegersAreBigEndian(t *testing.T) {
	for _, compact := range []bool{false, true} {
		e := NewEncoder(nil, 0, compact)
		e.PutInt8(-1)
		e.PutInt16(0x0102)
		e.PutInt32(0x01020304)
		e.PutInt64(-2)
		e.PutBool(true)

		want := []byte{
			0xff,
			0x01, 0x02,
			0x01, 0x02, 0x03, 0x04,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
			0x01,
		}
		assert.Equal(t, want, e.Bytes())
	}
}

func TestEncoderStringTooLong(t *testing.T) {
	e := NewEncoder(nil, 0, false)
	e.PutString(strings.Repeat("x", 1<<15))
	e.PutInt8(1)
	assert.ErrorIs(t, e.Err(), ErrValueTooLarge)
	assert.Empty(t, e.Bytes())

	// compact strings carry a varint length and have no such limit
	e = NewEncoder(nil, 0, true)
	e.PutString(strings.Repeat("x", 1<<15))
	assert.NoError(t, e.Err())
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
		input   []byte
		read    func(d *Decoder) error
		wantErr error
	}{
		{"int32 short", false, []byte{0, 0, 1}, func(d *Decoder) error { _, err := d.Int32(); return err }, ErrTruncatedInput},
		{"string past end", false, []byte{0, 5, 'a'}, func(d *Decoder) error { _, err := d.String(); return err }, ErrTruncatedInput},
		{"compact string past end", true, []byte{6, 'a'}, func(d *Decoder) error { _, err := d.String(); return err }, ErrTruncatedInput},
		{"invalid utf8", false, []byte{0, 2, 0xc3, 0x28}, func(d *Decoder) error { _, err := d.String(); return err }, ErrInvalidEncoding},
		{"null non-nullable string", false, []byte{0xff, 0xff}, func(d *Decoder) error { _, err := d.String(); return err }, ErrInvalidEncoding},
		{"negative string length", false, []byte{0xff, 0xfe}, func(d *Decoder) error { _, err := d.NullableString(); return err }, ErrInvalidEncoding},
		{"null non-nullable bytes", true, []byte{0}, func(d *Decoder) error { _, err := d.Bytes(); return err }, ErrInvalidEncoding},
		{"array count beyond input", false, []byte{0, 0, 1, 0}, func(d *Decoder) error { _, _, err := d.ArrayLen(); return err }, ErrTruncatedInput},
		{"uuid short", false, make([]byte, 15), func(d *Decoder) error { _, err := d.UUID(); return err }, ErrTruncatedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewDecoder(tt.input, 0, tt.compact))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecoderNullable(t *testing.T) {
	d := NewDecoder([]byte{0xff, 0xff}, 0, false)

	s, err := d.NullableString()
	require.NoError(t, err)
	assert.Nil(t, s)

	d = NewDecoder([]byte{0xff, 0xff, 0xff, 0xff}, 0, false)
	b, err := d.NullableBytes()
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Zero(t, d.Remaining())

	d = NewDecoder([]byte{0}, 0, true)
	s, err = d.NullableString()
	require.NoError(t, err)
	assert.Nil(t, s)

	d = NewDecoder([]byte{1}, 0, true)
	s, err = d.NullableString()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "", *s)
}

type primitives struct {
	I8    int8
	I16   int16
	I32   int32
	I64   int64
	B     bool
	S     string
	NS    *string
	Blob  []byte
	NBlob []byte
	ID    uuid.UUID
	Ints  []int32
	Names []string
	NArr  []int64
	Tags  TaggedFields
}

func (p *primitives) Fields() []Field {
	return []Field{
		F("i8", Int8(&p.I8)),
		F("i16", Int16(&p.I16)),
		F("i32", Int32(&p.I32)),
		F("i64", Int64(&p.I64)),
		F("b", Bool(&p.B)),
		F("s", String(&p.S)),
		F("ns", NullableString(&p.NS)),
		F("blob", Bytes(&p.Blob)),
		F("nblob", NullableBytes(&p.NBlob)),
		F("id", UUID(&p.ID)),
		F("ints", Array(&p.Ints, Int32)),
		F("names", Array(&p.Names, String)),
		F("narr", NullableArray(&p.NArr, Int64)),
		Tagged(&p.Tags),
	}
}

func TestPrimitivesRoundTrip(t *testing.T) {
	values := []primitives{
		{
			I8: -8, I16: -16, I32: 1 << 30, I64: -1 << 60, B: true,
			S: "héllo", NS: ptr("x"), Blob: []byte{1, 2, 3}, NBlob: []byte{},
			ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Ints: []int32{1, -1}, Names: []string{"a", ""}, NArr: []int64{7},
			Tags: TaggedFields{{Tag: 1, Data: []byte("z")}},
		},
		{
			S: "", Blob: []byte{}, Ints: []int32{}, Names: []string{},
		},
	}

	for _, compact := range []bool{false, true} {
		for _, v := range values {
			buf, err := Marshal(&v, 0, compact)
			require.NoError(t, err)

			var got primitives
			require.NoError(t, Unmarshal(buf, &got, 0, compact))

			if !compact {
				// tags only travel in compact mode
				v.Tags = nil
			}
			assert.Equal(t, v, got, "compact=%v", compact)
		}
	}
}

func TestNullArrayRejectedWhenNotNullable(t *testing.T) {
	var p struct{ Ints []int32 }
	v := Array(&p.Ints, Int32)
	err := v.Decode(NewDecoder([]byte{0xff, 0xff, 0xff, 0xff}, 0, false))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestStringPtr(t *testing.T) {
	var s *string
	v := StringPtr(&s)

	e := NewEncoder(nil, 0, false)
	v.Encode(e)
	assert.ErrorIs(t, e.Err(), ErrInvalidEncoding)

	s = ptr("ab")
	e = NewEncoder(nil, 0, true)
	v.Encode(e)
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{3, 'a', 'b'}, e.Bytes())

	s = nil
	require.NoError(t, v.Decode(NewDecoder([]byte{0, 1, 'x'}, 0, false)))
	assert.Equal(t, ptr("x"), s)

	err := v.Decode(NewDecoder([]byte{0xff, 0xff}, 0, false))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

type level int8

const (
	levelLow  level = 0
	levelHigh level = 1
)

func parseLevel(v int8) (level, error) {
	switch level(v) {
	case levelLow, levelHigh:
		return level(v), nil
	}
	return 0, ErrInvalidEncoding
}

func TestInt8Enum(t *testing.T) {
	var l level
	v := Int8Enum(&l, parseLevel)

	require.NoError(t, v.Decode(NewDecoder([]byte{1}, 0, false)))
	assert.Equal(t, levelHigh, l)

	err := v.Decode(NewDecoder([]byte{7}, 0, false))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
