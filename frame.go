package kwire

import (
	"encoding/binary"
	"fmt"
)

// DefaultMaxFrameSize bounds a single response frame.
const DefaultMaxFrameSize = 100 << 20

const frameHeaderSize = 4

// Frame is one complete length-delimited message, without its length prefix.
type Frame struct {
	CorrelationID int32
	Payload       []byte // starts with the correlation id
}

// Body returns the payload after the correlation id.
func (f Frame) Body() []byte {
	return f.Payload[4:]
}

// FrameDecoder splits a byte stream into frames.
//
// Feed appends whatever the stream produced; Next returns complete frames one by
// one. Partial frames stay buffered until their last byte arrives.
type FrameDecoder struct {
	buf     []byte
	start   int
	maxSize int
}

// NewFrameDecoder returns a decoder rejecting frames larger than maxSize. Zero
// means DefaultMaxFrameSize.
func NewFrameDecoder(maxSize int) *FrameDecoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &FrameDecoder{maxSize: maxSize}
}

// Feed buffers p. The decoder keeps its own copy.
func (d *FrameDecoder) Feed(p []byte) {
	if d.start > 0 && d.start == len(d.buf) {
		d.buf = d.buf[:0]
		d.start = 0
	}
	if d.start > 0 && len(d.buf)+len(p) > cap(d.buf) {
		n := copy(d.buf, d.buf[d.start:])
		d.buf = d.buf[:n]
		d.start = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes waiting for a frame to complete.
func (d *FrameDecoder) Buffered() int {
	return len(d.buf) - d.start
}

// Next returns the next complete frame. ok is false when more input is needed.
// An error means the stream is not a valid frame sequence and must be dropped.
func (d *FrameDecoder) Next() (f Frame, ok bool, err error) {
	pending := d.buf[d.start:]
	if len(pending) < frameHeaderSize {
		return Frame{}, false, nil
	}

	size := int32(binary.BigEndian.Uint32(pending))
	if size < 4 || int(size) > d.maxSize {
		return Frame{}, false, &TransportError{Op: "frame", Err: fmt.Errorf("invalid frame length %d", size)}
	}
	if len(pending) < frameHeaderSize+int(size) {
		return Frame{}, false, nil
	}

	payload := make([]byte, size)
	copy(payload, pending[frameHeaderSize:])
	d.start += frameHeaderSize + int(size)

	return Frame{
		CorrelationID: int32(binary.BigEndian.Uint32(payload)),
		Payload:       payload,
	}, true, nil
}

// beginFrame appends the length placeholder and returns its offset.
func beginFrame(buf []byte) ([]byte, int) {
	return append(buf, 0, 0, 0, 0), len(buf)
}

// endFrame patches the placeholder at mark with the number of bytes after it.
func endFrame(buf []byte, mark int) []byte {
	binary.BigEndian.PutUint32(buf[mark:], uint32(len(buf)-mark-frameHeaderSize))
	return buf
}
