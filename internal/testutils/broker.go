package testutils

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go/protocol"
	"github.com/segmentio/kafka-go/protocol/apiversions"
)

// APIVersion is one entry advertised by the test broker.
type APIVersion struct {
	Key        int16
	MinVersion int16
	MaxVersion int16
}

// Broker is a scripted broker listening on the loopback interface.
//
// Every accepted connection is handed to the script in its own goroutine. The
// listener and all connections are closed at the end of the test.
type Broker struct {
	ln     net.Listener
	script func(c *BrokerConn)

	mu     sync.Mutex
	conns  []net.Conn
	closed bool
	wg     sync.WaitGroup
}

// NewBroker starts a broker running script for every connection.
func NewBroker(t testing.TB, script func(c *BrokerConn)) *Broker {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	b := &Broker{ln: ln, script: script}
	b.wg.Add(1)
	go b.acceptLoop()

	t.Cleanup(b.Close)
	return b
}

func (b *Broker) Addr() string {
	return b.ln.Addr().String()
}

// Accepted returns the number of connections accepted so far.
func (b *Broker) Accepted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

func (b *Broker) Close() {
	_ = b.ln.Close()

	b.mu.Lock()
	b.closed = true
	for _, c := range b.conns {
		_ = c.Close()
	}
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Broker) acceptLoop() {
	defer b.wg.Done()

	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			_ = conn.Close()
			return
		}
		b.conns = append(b.conns, conn)
		b.mu.Unlock()

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer conn.Close()
			b.script(NewBrokerConn(conn))
		}()
	}
}

// BrokerConn is the broker side of one connection.
type BrokerConn struct {
	net.Conn
	r *bufio.Reader

	wmu sync.Mutex
}

// NewBrokerConn wraps the server side of a connection, typically one end of
// net.Pipe.
func NewBrokerConn(conn net.Conn) *BrokerConn {
	return &BrokerConn{Conn: conn, r: bufio.NewReader(conn)}
}

// Request is a request frame as received, with its v1 header fields decoded.
type Request struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	Payload       []byte // the whole frame without the length prefix
}

// ReadRequest reads one request frame.
func (c *BrokerConn) ReadRequest() (Request, error) {
	var size [4]byte
	if _, err := io.ReadFull(c.r, size[:]); err != nil {
		return Request{}, err
	}

	n := binary.BigEndian.Uint32(size[:])
	if n < 8 {
		return Request{}, fmt.Errorf("request frame too short: %d bytes", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return Request{}, err
	}

	return Request{
		APIKey:        int16(binary.BigEndian.Uint16(payload[0:])),
		APIVersion:    int16(binary.BigEndian.Uint16(payload[2:])),
		CorrelationID: int32(binary.BigEndian.Uint32(payload[4:])),
		Payload:       payload,
	}, nil
}

// WriteResponse writes a response frame. flexibleHeader adds the empty tagged
// field buffer of the v1 response header.
func (c *BrokerConn) WriteResponse(correlationID int32, flexibleHeader bool, body []byte) error {
	header := 4
	if flexibleHeader {
		header++
	}

	frame := make([]byte, 4+header, 4+header+len(body))
	binary.BigEndian.PutUint32(frame[0:], uint32(header+len(body)))
	binary.BigEndian.PutUint32(frame[4:], uint32(correlationID))
	frame = append(frame, body...)

	return c.WriteRaw(frame)
}

// WriteRaw writes p as is.
func (c *BrokerConn) WriteRaw(p []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.Conn.Write(p)
	return err
}

// ServeHandshake answers one ApiVersions request, v0 to v2, using the kafka-go
// codec. It returns the version the client asked for.
func (c *BrokerConn) ServeHandshake(keys []APIVersion) (int16, error) {
	version, correlationID, _, msg, err := protocol.ReadRequest(c.r)
	if err != nil {
		return 0, err
	}
	if _, ok := msg.(*apiversions.Request); !ok {
		return version, fmt.Errorf("expected an ApiVersions request, got %T", msg)
	}

	return version, c.writeAPIVersions(version, correlationID, 0, keys)
}

// RejectHandshake reads a request and answers UNSUPPORTED_VERSION with a v0
// body advertising keys, as a broker does for an ApiVersions version it does
// not know.
func (c *BrokerConn) RejectHandshake(keys []APIVersion) (Request, error) {
	req, err := c.ReadRequest()
	if err != nil {
		return req, err
	}
	return req, c.writeAPIVersions(0, req.CorrelationID, 35, keys)
}

func (c *BrokerConn) writeAPIVersions(version int16, correlationID int32, errorCode int16, keys []APIVersion) error {
	resp := &apiversions.Response{ErrorCode: errorCode}
	for _, k := range keys {
		resp.ApiKeys = append(resp.ApiKeys, apiversions.ApiKeyResponse{
			ApiKey:     k.Key,
			MinVersion: k.MinVersion,
			MaxVersion: k.MaxVersion,
		})
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return protocol.WriteResponse(c.Conn, version, correlationID, resp)
}

// Serve answers requests until the connection fails. respond returns the
// response body and whether the response header is flexible; a nil body closes
// the connection instead.
func (c *BrokerConn) Serve(respond func(req Request) (body []byte, flexibleHeader bool)) error {
	for {
		req, err := c.ReadRequest()
		if err != nil {
			return err
		}

		body, flexible := respond(req)
		if body == nil {
			return c.Close()
		}
		if err := c.WriteResponse(req.CorrelationID, flexible, body); err != nil {
			return err
		}
	}
}

// IsClosed reports whether err means the peer went away.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF)
}

// DefaultAPIVersions is what the scripted broker advertises unless told otherwise.
var DefaultAPIVersions = []APIVersion{
	{Key: 0, MinVersion: 0, MaxVersion: 9},   // Produce
	{Key: 1, MinVersion: 0, MaxVersion: 13},  // Fetch
	{Key: 2, MinVersion: 0, MaxVersion: 7},   // ListOffsets
	{Key: 3, MinVersion: 0, MaxVersion: 9},   // Metadata
	{Key: 8, MinVersion: 0, MaxVersion: 8},   // OffsetCommit
	{Key: 9, MinVersion: 0, MaxVersion: 8},   // OffsetFetch
	{Key: 10, MinVersion: 0, MaxVersion: 4},  // FindCoordinator
	{Key: 11, MinVersion: 0, MaxVersion: 9},  // JoinGroup
	{Key: 12, MinVersion: 0, MaxVersion: 4},  // Heartbeat
	{Key: 13, MinVersion: 0, MaxVersion: 5},  // LeaveGroup
	{Key: 14, MinVersion: 0, MaxVersion: 5},  // SyncGroup
	{Key: 15, MinVersion: 0, MaxVersion: 5},  // DescribeGroups
	{Key: 16, MinVersion: 0, MaxVersion: 4},  // ListGroups
	{Key: 18, MinVersion: 0, MaxVersion: 3},  // ApiVersions
	{Key: 999, MinVersion: 0, MaxVersion: 1}, // unknown to the client
}
