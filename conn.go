package kwire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pior/kwire/api"
	"github.com/pior/kwire/wire"
)

// ConnConfig configures a single connection.
type ConnConfig struct {
	// ClientID is sent in every request header. nil sends a null client id.
	ClientID *string

	// MaxFrameSize bounds the size of a response frame.
	// Zero means DefaultMaxFrameSize.
	MaxFrameSize int

	// Logger receives connection lifecycle events. nil disables logging.
	Logger *zerolog.Logger
}

// Conn is a multiplexed connection to one broker.
//
// Any number of goroutines may submit requests concurrently. Requests are
// written in submission order; responses are matched to their callers by
// correlation id whatever order the broker answers in.
type Conn struct {
	netConn      net.Conn
	clientID     *string
	maxFrameSize int
	logger       zerolog.Logger
	createdAt    time.Time

	// write path: tag assignment, registration and the write itself happen under
	// one lock so that tags and frames leave in the same order.
	wmu  sync.Mutex
	w    *bufio.Writer
	tags tagStore
	buf  []byte

	mu       sync.Mutex
	inflight map[int32]*Call
	err      error

	done      chan struct{}
	catalogue atomic.Pointer[Catalogue]
}

// NewConn wraps an established stream and starts its read loop.
// The connection owns netConn from now on.
func NewConn(netConn net.Conn, config ConnConfig) *Conn {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	c := &Conn{
		netConn:      netConn,
		clientID:     config.ClientID,
		maxFrameSize: config.MaxFrameSize,
		logger:       logger.With().Str("broker", netConn.RemoteAddr().String()).Logger(),
		createdAt:    time.Now(),
		w:            bufio.NewWriter(netConn),
		inflight:     make(map[int32]*Call),
		done:         make(chan struct{}),
	}

	go c.readLoop()
	return c
}

// Call is the pending result of one submitted request.
type Call struct {
	key           api.Key
	version       int16
	flexible      bool
	correlationID int32
	oneWay        bool // no response will come

	done      chan struct{}
	payload   []byte
	err       error
	abandoned atomic.Bool
}

// CorrelationID returns the id the request was sent with.
func (c *Call) CorrelationID() int32 { return c.correlationID }

// Version returns the version the request was encoded with.
func (c *Call) Version() int16 { return c.version }

// Done is closed once the response or a transport failure is available.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the response arrives and decodes it into resp with the
// version and mode of the request.
//
// If ctx ends first, Wait returns ctx.Err(). The request is not retracted: its
// response is still read from the connection and then dropped.
//
// For a request the broker does not answer, Wait returns nil once the request
// is written and resp is left untouched.
func (c *Call) Wait(ctx context.Context, resp api.Response) error {
	payload, err := c.wait(ctx)
	if err != nil || c.oneWay {
		return err
	}
	return c.decode(payload, resp)
}

func (c *Call) wait(ctx context.Context) ([]byte, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		c.abandoned.Store(true)
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.payload, nil
}

// decode reads the response header and body from a frame payload.
func (c *Call) decode(payload []byte, resp api.Response) error {
	var hdr ResponseHeader
	d := wire.NewDecoder(payload, c.version, responseHeaderFlexible(c.key, c.flexible))
	if err := wire.Decode(d, &hdr); err != nil {
		return fmt.Errorf("%s v%d response header: %w", c.key, c.version, err)
	}

	body := payload[d.Offset():]
	if err := wire.Unmarshal(body, resp, c.version, c.flexible); err != nil {
		return fmt.Errorf("%s v%d response: %w", c.key, c.version, err)
	}
	return nil
}

// Submit encodes req at version and writes it. The returned Call resolves when
// the broker answers.
//
// The wire mode follows from version and the request's flexible threshold. A
// *wire.SchemaError panic from the encoder propagates to the caller.
func (c *Conn) Submit(ctx context.Context, req api.Request, version int16) (*Call, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flexible := api.IsFlexible(req, version)
	hdr := RequestHeader{
		APIKey:     req.Key(),
		APIVersion: version,
		ClientID:   c.clientID,
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.Err(); err != nil {
		return nil, err
	}

	buf, mark := beginFrame(c.buf[:0])
	e := wire.NewEncoder(buf, version, flexible)
	wire.Encode(e, &hdr)
	wire.Encode(e, req)
	if err := e.Err(); err != nil {
		return nil, fmt.Errorf("encode %s v%d: %w", req.Key(), version, err)
	}
	buf = endFrame(e.Bytes(), mark)

	call := &Call{
		key:      req.Key(),
		version:  version,
		flexible: flexible,
		oneWay:   !api.ExpectsResponse(req),
		done:     make(chan struct{}),
	}

	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, c.err
	}
	id := c.tags.assign(&hdr, c.isInflight)
	call.correlationID = id
	if !call.oneWay {
		c.inflight[id] = call
	}
	c.mu.Unlock()

	// the header was encoded before the id existed: patch it in place
	putCorrelationID(buf[mark+frameHeaderSize:], id)

	deadline, _ := ctx.Deadline()
	if err := c.netConn.SetWriteDeadline(deadline); err != nil {
		c.fail(&TransportError{Op: "write", Err: err})
		return nil, c.Err()
	}
	if _, err := c.w.Write(buf); err != nil {
		c.fail(&TransportError{Op: "write", Err: err})
		return nil, c.Err()
	}
	if err := c.w.Flush(); err != nil {
		c.fail(&TransportError{Op: "write", Err: err})
		return nil, c.Err()
	}

	if cap(buf) <= maxRetainedBuffer {
		c.buf = buf[:0]
	}
	if call.oneWay {
		close(call.done)
	}
	return call, nil
}

const maxRetainedBuffer = 64 << 10

// putCorrelationID writes id into an encoded request header, after api_key and
// api_version.
func putCorrelationID(header []byte, id int32) {
	header[4] = byte(id >> 24)
	header[5] = byte(id >> 16)
	header[6] = byte(id >> 8)
	header[7] = byte(id)
}

// must be called with c.mu held
func (c *Conn) isInflight(id int32) bool {
	_, ok := c.inflight[id]
	return ok
}

// Execute negotiates the version of req, sends it and decodes the answer into
// resp. The connection must have completed Handshake.
func (c *Conn) Execute(ctx context.Context, req api.Request, resp api.Response) error {
	version, err := c.Negotiate(req)
	if err != nil {
		return err
	}
	call, err := c.Submit(ctx, req, version)
	if err != nil {
		return err
	}
	return call.Wait(ctx, resp)
}

func (c *Conn) readLoop() {
	frames := NewFrameDecoder(c.maxFrameSize)
	buf := make([]byte, 32<<10)

	for {
		n, err := c.netConn.Read(buf)
		if n > 0 {
			frames.Feed(buf[:n])
			for {
				f, ok, ferr := frames.Next()
				if ferr != nil {
					c.fail(ferr)
					return
				}
				if !ok {
					break
				}
				if derr := c.dispatch(f); derr != nil {
					c.fail(derr)
					return
				}
			}
		}
		if err != nil {
			c.fail(&TransportError{Op: "read", Err: err})
			return
		}
	}
}

// dispatch hands a frame to the call waiting for it.
func (c *Conn) dispatch(f Frame) error {
	id := c.tags.resolve(f)

	c.mu.Lock()
	call, ok := c.inflight[id]
	if ok {
		delete(c.inflight, id)
	}
	c.mu.Unlock()

	if !ok {
		return &TransportError{Op: "read", Err: fmt.Errorf("%w: correlation id %d", ErrUnexpectedResponse, id)}
	}

	if call.abandoned.Load() {
		c.logger.Debug().Int32("correlation_id", id).Str("api", call.key.String()).Msg("dropping response of abandoned call")
	}

	call.payload = f.Payload
	close(call.done)
	return nil
}

// fail tears the connection down and resolves every pending call with err.
// Only the first failure is kept.
func (c *Conn) fail(err error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	pending := c.inflight
	c.inflight = make(map[int32]*Call)
	c.mu.Unlock()

	for _, call := range pending {
		call.err = err
		close(call.done)
	}

	_ = c.netConn.Close()
	close(c.done)

	if errors.Is(err, ErrConnClosed) {
		c.logger.Debug().Int("pending", len(pending)).Msg("connection closed")
	} else {
		c.logger.Warn().Err(err).Int("pending", len(pending)).Msg("connection failed")
	}
}

// Close tears the connection down. Pending calls fail with a *TransportError.
func (c *Conn) Close() error {
	c.fail(&TransportError{Op: "close", Err: ErrConnClosed})
	return nil
}

// Err returns the error that ended the connection, or nil while it is usable.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Pending returns the number of calls waiting for a response.
func (c *Conn) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Conn) CreatedAt() time.Time {
	return c.createdAt
}

// Catalogue returns the versions learned at handshake, or nil before it.
func (c *Conn) Catalogue() *Catalogue {
	return c.catalogue.Load()
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
