package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gated struct {
	Head  int16
	Late  Versioned[int32]
	Tail  int8
	Gone  int32
	Label Versioned[*string]
	Tags  TaggedFields
}

func (g *gated) Fields() []Field {
	return []Field{
		F("head", Int16(&g.Head)),
		F("late", Opt(&g.Late, Int32)).Since(3),
		F("tail", Int8(&g.Tail)),
		F("gone", Int32(&g.Gone)).Until(1),
		F("label", Opt(&g.Label, NullableString)).Since(2),
		Tagged(&g.Tags),
	}
}

func TestVersionGate(t *testing.T) {
	in := gated{Head: 1, Late: Some[int32](0x0a0b0c0d), Tail: 2, Gone: 3, Label: Some[*string](nil)}

	tests := []struct {
		version int16
		want    []byte
	}{
		{0, []byte{0, 1, 2, 0, 0, 0, 3}},
		{1, []byte{0, 1, 2, 0, 0, 0, 3}},
		{2, []byte{0, 1, 2, 0xff, 0xff}},
		{3, []byte{0, 1, 0x0a, 0x0b, 0x0c, 0x0d, 2, 0xff, 0xff}},
		{4, []byte{0, 1, 0x0a, 0x0b, 0x0c, 0x0d, 2, 0xff, 0xff}},
	}

	for _, tt := range tests {
		buf, err := Marshal(&in, tt.version, false)
		require.NoError(t, err)
		assert.Equal(t, tt.want, buf, "version %d", tt.version)

		var out gated
		require.NoError(t, Unmarshal(buf, &out, tt.version, false))
		_, lateSet := out.Late.Get()
		assert.Equal(t, tt.version >= 3, lateSet, "version %d", tt.version)
		assert.Equal(t, in.Tail, out.Tail)
	}
}

func TestVersionGateDecodeAbsentConsumesNothing(t *testing.T) {
	// At version 2 "late" is absent: the bytes after head belong to tail.
	d := NewDecoder([]byte{0, 1, 9, 0xff, 0xff, 0xee}, 2, false)
	out := gated{Late: Some[int32](42)}
	require.NoError(t, Decode(d, &out))

	assert.False(t, out.Late.Set)
	assert.Zero(t, out.Late.Value)
	assert.Equal(t, int8(9), out.Tail)
	assert.True(t, out.Label.Set)
	assert.Nil(t, out.Label.Value)
	assert.Equal(t, 1, d.Remaining())
}

func TestEncodeUnsetRequiredFieldPanics(t *testing.T) {
	in := gated{Label: Some[*string](nil)}

	// absent below its range is fine
	_, err := Marshal(&in, 2, false)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		se, ok := r.(*SchemaError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "late", se.Field)
		assert.Equal(t, int16(3), se.Version)
	}()
	_, _ = Marshal(&in, 3, false)
}

func TestTaggedFieldsOnlyInCompactMode(t *testing.T) {
	in := gated{Late: Some[int32](1), Label: Some(ptr("x"))}

	standard, err := Marshal(&in, 3, false)
	require.NoError(t, err)
	compact, err := Marshal(&in, 3, true)
	require.NoError(t, err)

	// compact: label is 1-byte length, plus the trailing empty tag buffer
	assert.Equal(t, len(standard)-1+1, len(compact))
	assert.Equal(t, byte(0), compact[len(compact)-1])
}

func TestTaggedFieldsForwardCompatible(t *testing.T) {
	// count=1, tag=99, len=5, 5 bytes, then a trailing int16.
	buf := []byte{1, 99, 5, 'a', 'b', 'c', 'd', 'e', 0x12, 0x34}

	var tags TaggedFields
	var after int16
	d := NewDecoder(buf, 0, true)
	require.NoError(t, Tagged(&tags).Value.Decode(d))
	require.NoError(t, Int16(&after).Decode(d))

	assert.Equal(t, int16(0x1234), after)
	data, ok := tags.Get(99)
	require.True(t, ok)
	assert.Equal(t, []byte("abcde"), data)
}

func TestTaggedFieldsEncodeSorted(t *testing.T) {
	var tags TaggedFields
	tags.Set(5, []byte{0xaa})
	tags.Set(1, nil)
	tags.Set(5, []byte{0xbb})

	e := NewEncoder(nil, 0, true)
	Tagged(&tags).Value.Encode(e)
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{2, 1, 0, 5, 1, 0xbb}, e.Bytes())

	// the caller's order is untouched
	assert.Equal(t, uint32(5), tags[0].Tag)
}

func TestTaggedFieldsEmpty(t *testing.T) {
	var tags TaggedFields
	e := NewEncoder(nil, 0, true)
	Tagged(&tags).Value.Encode(e)
	assert.Equal(t, []byte{0}, e.Bytes())
}

type header struct {
	ID       int32
	ClientID *string
	Tags     TaggedFields
}

func (h *header) Fields() []Field {
	return []Field{
		F("id", Int32(&h.ID)),
		F("client_id", NullableString(&h.ClientID)).Standard(),
		Tagged(&h.Tags),
	}
}

func TestFieldModeOverride(t *testing.T) {
	h := header{ID: 7, ClientID: ptr("ab")}

	buf, err := Marshal(&h, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7, 0, 2, 'a', 'b', 0}, buf)

	var out header
	require.NoError(t, Unmarshal(buf, &out, 0, true))
	assert.Equal(t, "ab", *out.ClientID)
}

type inner struct {
	Name string
}

func (i *inner) Fields() []Field {
	return []Field{F("name", String(&i.Name))}
}

type outer struct {
	Items []inner
}

func (o *outer) Fields() []Field {
	return []Field{
		F("items", Array(&o.Items, func(i *inner) Value { return Struct(i) })),
	}
}

func TestDecodeErrorCarriesFieldPath(t *testing.T) {
	buf := []byte{0, 0, 0, 1, 0, 9, 'x'}

	var out outer
	err := Unmarshal(buf, &out, 0, false)
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "items.name", de.Field)
	assert.Equal(t, 4, de.Offset)
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.False(t, de.ShouldCloseConnection())
}

func TestNestedRoundTrip(t *testing.T) {
	in := outer{Items: []inner{{"a"}, {"bc"}}}
	for _, compact := range []bool{false, true} {
		buf, err := Marshal(&in, 0, compact)
		require.NoError(t, err)

		var out outer
		require.NoError(t, Unmarshal(buf, &out, 0, compact))
		assert.Equal(t, in, out)
	}
}
