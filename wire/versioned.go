package wire

// Versioned holds a value whose presence depends on the negotiated version.
//
// After decoding, Set reports whether the field existed at the decoded version.
// Before encoding, Set must be true at every version the field's range covers.
type Versioned[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Versioned holding v.
func Some[T any](v T) Versioned[T] {
	return Versioned[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present.
func (v Versioned[T]) Get() (T, bool) {
	return v.Value, v.Set
}

// Or returns the value when present, def otherwise.
func (v Versioned[T]) Or(def T) T {
	if v.Set {
		return v.Value
	}
	return def
}

// Opt binds a Versioned field. inner adapts the held value, so a version gated
// nullable string is Opt(&x.Name, NullableString).
func Opt[T any](p *Versioned[T], inner func(*T) Value) Value {
	return optValue[T]{p: p, inner: inner}
}

type optValue[T any] struct {
	p     *Versioned[T]
	inner func(*T) Value
}

func (v optValue[T]) Encode(e *Encoder) {
	v.inner(&v.p.Value).Encode(e)
}

func (v optValue[T]) Decode(d *Decoder) error {
	if err := v.inner(&v.p.Value).Decode(d); err != nil {
		return err
	}
	v.p.Set = true
	return nil
}

func (v optValue[T]) present() bool {
	return v.p.Set
}

func (v optValue[T]) clear() {
	var zero T
	v.p.Value = zero
	v.p.Set = false
}

// optional is implemented by values that track presence.
type optional interface {
	present() bool
	clear()
}
