package kwire

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func rawFrame(correlationID int32, body ...byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(4+len(body)))
	b = binary.BigEndian.AppendUint32(b, uint32(correlationID))
	return append(b, body...)
}

func TestFrameDecoderByteByByte(t *testing.T) {
	d := NewFrameDecoder(0)
	stream := rawFrame(7, 0xAA, 0xBB)

	for i, b := range stream {
		_, ok, err := d.Next()
		require.NoError(t, err)
		require.False(t, ok, "frame complete after %d bytes", i)
		d.Feed([]byte{b})
	}

	f, ok, err := d.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(7), f.CorrelationID)
	require.Equal(t, []byte{0xAA, 0xBB}, f.Body())
	require.Equal(t, 0, d.Buffered())
}

func TestFrameDecoderSeveralFramesInOneRead(t *testing.T) {
	d := NewFrameDecoder(0)

	var stream []byte
	stream = append(stream, rawFrame(1, 1)...)
	stream = append(stream, rawFrame(2)...)
	stream = append(stream, rawFrame(3, 3, 3)...)
	stream = append(stream, 0, 0) // start of a fourth frame
	d.Feed(stream)

	for _, id := range []int32{1, 2, 3} {
		f, ok, err := d.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, id, f.CorrelationID)
	}

	_, ok, err := d.Next()
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 2, d.Buffered())
}

func TestFrameDecoderKeepsPayloadAfterFeed(t *testing.T) {
	d := NewFrameDecoder(0)
	d.Feed(rawFrame(1, 0x01))

	f, ok, err := d.Next()
	require.NoError(t, err)
	require.True(t, ok)

	// the buffer gets reused, the returned frame must not change
	d.Feed(rawFrame(2, 0x02))
	require.Equal(t, []byte{0x01}, f.Body())
}

func TestFrameDecoderInvalidLength(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
	}{
		{"negative", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"shorter than correlation id", []byte{0, 0, 0, 3}},
		{"above maximum", []byte{0, 0, 0x10, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewFrameDecoder(4096)
			d.Feed(tt.header)

			_, ok, err := d.Next()
			require.False(t, ok)
			require.ErrorIs(t, err, ErrTransportFailure)

			var terr *TransportError
			require.True(t, errors.As(err, &terr))
			require.Equal(t, "frame", terr.Op)
		})
	}
}

func TestBeginEndFrame(t *testing.T) {
	buf := []byte{0xEE} // unrelated prefix
	buf, mark := beginFrame(buf)
	require.Equal(t, 1, mark)

	buf = append(buf, 0, 0, 0, 9, 0xAB)
	buf = endFrame(buf, mark)

	require.Equal(t, []byte{0xEE, 0, 0, 0, 5, 0, 0, 0, 9, 0xAB}, buf)
}
