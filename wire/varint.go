package wire

// AppendUvarint appends the unsigned base-128 encoding of v to buf.
// Groups of 7 bits are written least significant first; every byte but the last
// has its high bit set.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// UvarintLen returns the number of bytes AppendUvarint writes for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Uvarint64 decodes an unsigned varint from buf.
// It returns the value and the number of bytes consumed.
func Uvarint64(buf []byte) (uint64, int, error) {
	return uvarint(buf, 64)
}

// Uvarint32 is Uvarint64 restricted to values that fit in 32 bits.
func Uvarint32(buf []byte) (uint32, int, error) {
	v, n, err := uvarint(buf, 32)
	return uint32(v), n, err
}

func uvarint(buf []byte, width uint) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range buf {
		if shift >= width {
			return 0, 0, ErrInvalidEncoding
		}
		group := uint64(b & 0x7f)
		// The last group may only use the bits left in the target width.
		if width-shift < 7 && group>>(width-shift) != 0 {
			return 0, 0, ErrInvalidEncoding
		}
		v |= group << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncatedInput
}
