package wire

import (
	"cmp"
	"slices"
)

// TaggedField is one entry of a tagged field buffer. Data holds the raw payload:
// tags this package does not interpret are carried through untouched.
type TaggedField struct {
	Tag  uint32
	Data []byte
}

// TaggedFields is the buffer trailing every structure in compact mode.
type TaggedFields []TaggedField

// Get returns the payload stored under tag.
func (t TaggedFields) Get(tag uint32) ([]byte, bool) {
	for _, f := range t {
		if f.Tag == tag {
			return f.Data, true
		}
	}
	return nil, false
}

// Set stores data under tag, replacing an existing entry.
func (t *TaggedFields) Set(tag uint32, data []byte) {
	for i := range *t {
		if (*t)[i].Tag == tag {
			(*t)[i].Data = data
			return
		}
	}
	*t = append(*t, TaggedField{Tag: tag, Data: data})
}

// Tagged returns the conventional trailing field for a tagged buffer. The field
// only exists in compact mode.
func Tagged(p *TaggedFields) Field {
	return Field{
		Name:     "tagged_fields",
		Versions: AllVersions,
		Value:    taggedValue{p},
		tagged:   true,
	}
}

type taggedValue struct{ p *TaggedFields }

// Encode writes entries sorted by ascending tag. An empty buffer is a single
// zero byte.
func (v taggedValue) Encode(e *Encoder) {
	fields := *v.p
	if !slices.IsSortedFunc(fields, byTag) {
		fields = slices.SortedStableFunc(slices.Values(fields), byTag)
	}
	e.PutUvarint(uint64(len(fields)))
	for _, f := range fields {
		e.PutUvarint(uint64(f.Tag))
		e.PutUvarint(uint64(len(f.Data)))
		e.PutRaw(f.Data)
	}
}

// Decode keeps every entry, known or not.
func (v taggedValue) Decode(d *Decoder) error {
	n, err := d.Uvarint32()
	if err != nil {
		return err
	}
	if n == 0 {
		*v.p = nil
		return nil
	}
	if int(n) > d.Remaining() {
		return ErrTruncatedInput
	}
	fields := make(TaggedFields, 0, n)
	for range n {
		tag, err := d.Uvarint32()
		if err != nil {
			return err
		}
		size, err := d.Uvarint32()
		if err != nil {
			return err
		}
		data, err := d.Raw(int(size))
		if err != nil {
			return err
		}
		fields = append(fields, TaggedField{Tag: tag, Data: data})
	}
	*v.p = fields
	return nil
}

func byTag(a, b TaggedField) int {
	return cmp.Compare(a.Tag, b.Tag)
}
