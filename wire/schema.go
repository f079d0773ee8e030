package wire

import (
	"fmt"
	"math"
)

// Unbounded is the open upper end of a version range.
const Unbounded int16 = math.MaxInt16

// AllVersions is the range of a field present since version 0.
var AllVersions = VersionRange{Min: 0, Max: Unbounded}

// VersionRange is an inclusive [Min, Max] range of protocol versions.
type VersionRange struct {
	Min int16
	Max int16
}

func (r VersionRange) Contains(v int16) bool {
	return r.Min <= v && v <= r.Max
}

func (r VersionRange) String() string {
	if r.Max == Unbounded {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d..%d", r.Min, r.Max)
}

// Mode overrides the wire mode of a single field.
type Mode uint8

const (
	ModeInherit  Mode = iota // use the mode of the message
	ModeStandard             // always standard, even inside a compact message
	ModeCompact              // always compact
)

// Schema is implemented by every message and nested structure.
// Fields must return the same table, in the same order, on every call.
type Schema interface {
	Fields() []Field
}

// Field is one entry of a field table.
type Field struct {
	Name     string
	Versions VersionRange
	Mode     Mode
	Value    Value

	tagged bool
}

// F declares a field present at every version.
func F(name string, v Value) Field {
	return Field{Name: name, Versions: AllVersions, Value: v}
}

// Since returns f restricted to versions >= v.
func (f Field) Since(v int16) Field {
	f.Versions.Min = v
	return f
}

// Until returns f restricted to versions <= v.
func (f Field) Until(v int16) Field {
	f.Versions.Max = v
	return f
}

// Standard returns f pinned to the standard encoding.
func (f Field) Standard() Field {
	f.Mode = ModeStandard
	return f
}

// Compact returns f pinned to the compact encoding.
func (f Field) Compact() Field {
	f.Mode = ModeCompact
	return f
}

func (f Field) active(version int16, compact bool) bool {
	if f.tagged && !compact {
		return false
	}
	return f.Versions.Contains(version)
}

// Encode writes s to e following its field table.
// It panics with a *SchemaError when a Versioned field required by the active
// version is unset.
func Encode(e *Encoder, s Schema) {
	for _, f := range s.Fields() {
		if !f.active(e.version, e.compact) {
			continue
		}
		if o, ok := f.Value.(optional); ok && !o.present() {
			panic(&SchemaError{Field: f.Name, Version: e.version, Reason: "required value not set"})
		}
		restore := e.compact
		switch f.Mode {
		case ModeStandard:
			e.compact = false
		case ModeCompact:
			e.compact = true
		}
		f.Value.Encode(e)
		e.compact = restore
	}
}

// Decode reads s from d following its field table. Fields outside the active
// version consume nothing; Versioned ones are reset to absent.
func Decode(d *Decoder, s Schema) error {
	for _, f := range s.Fields() {
		if !f.active(d.version, d.compact) {
			if o, ok := f.Value.(optional); ok {
				o.clear()
			}
			continue
		}
		restore := d.compact
		switch f.Mode {
		case ModeStandard:
			d.compact = false
		case ModeCompact:
			d.compact = true
		}
		off := d.off
		err := f.Value.Decode(d)
		d.compact = restore
		if err != nil {
			return wrapField(f.Name, off, err)
		}
	}
	return nil
}

// Marshal encodes s into a new buffer.
func Marshal(s Schema, version int16, compact bool) ([]byte, error) {
	e := NewEncoder(make([]byte, 0, 64), version, compact)
	Encode(e, s)
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Unmarshal decodes s from b. Bytes left after the last field are ignored.
func Unmarshal(b []byte, s Schema, version int16, compact bool) error {
	return Decode(NewDecoder(b, version, compact), s)
}
