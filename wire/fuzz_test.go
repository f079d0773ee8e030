package wire

import (
	"errors"
	"testing"
)

// FuzzUnmarshal checks that arbitrary input never panics and only fails with the
// two decode sentinels.
func FuzzUnmarshal(f *testing.F) {
	seed := primitives{S: "seed", Ints: []int32{1, 2}, Tags: TaggedFields{{Tag: 3, Data: []byte{1}}}}
	for _, compact := range []bool{false, true} {
		buf, err := Marshal(&seed, 0, compact)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(buf, compact)
	}
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff}, true)
	f.Add([]byte{}, false)

	f.Fuzz(func(t *testing.T, data []byte, compact bool) {
		var p primitives
		err := Unmarshal(data, &p, 0, compact)
		if err == nil {
			return
		}
		if !errors.Is(err, ErrTruncatedInput) && !errors.Is(err, ErrInvalidEncoding) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func FuzzUvarint(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1 << 63))
	f.Fuzz(func(t *testing.T, v uint64) {
		got, n, err := Uvarint64(AppendUvarint(nil, v))
		if err != nil || got != v || n != UvarintLen(v) {
			t.Fatalf("round trip %d: got %d n=%d err=%v", v, got, n, err)
		}
	})
}
