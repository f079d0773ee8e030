package kwire

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/pior/kwire/api"
)

const (
	DefaultClientID        = "kwire"
	DefaultSoftwareName    = "kwire"
	DefaultSoftwareVersion = "0.1.0"
)

// Config holds configuration for the client and its connection pools.
type Config struct {
	// ClientID is sent in every request header.
	// Defaults to DefaultClientID.
	ClientID string

	// SoftwareName and SoftwareVersion identify the client in ApiVersions v3+.
	SoftwareName    string
	SoftwareVersion string

	// HandshakeVersion is the ApiVersions version sent when a connection opens.
	// Brokers too old for it are retried at the version they advertise.
	// Zero sends v0, which every broker understands.
	HandshakeVersion int16

	// MaxSize is the maximum number of connections per broker.
	// Connections are multiplexed, so a small number is enough.
	// Defaults to 2.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle before being closed.
	// Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often to check idle connections for health.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// MaxFrameSize bounds the size of a response frame.
	// Zero means DefaultMaxFrameSize.
	MaxFrameSize int

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, uses NewPuddlePool.
	Pool PoolFactory

	// SelectBroker picks the broker for requests carrying a routing key.
	// If nil, uses DefaultBrokerSelector.
	SelectBroker BrokerSelector

	// NewCircuitBreaker creates a circuit breaker for a broker.
	// Called once per broker address when the pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) *CircuitBreaker

	// Logger receives client and connection events.
	// If nil, nothing is logged.
	Logger *zerolog.Logger

	// TracerProvider creates a span for every call.
	// If nil, the global provider is used.
	TracerProvider trace.TracerProvider

	// for testing purposes only
	constructor func(ctx context.Context, addr string) (*Conn, error)
}

func (c Config) withDefaults() Config {
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.SoftwareName == "" {
		c.SoftwareName = DefaultSoftwareName
	}
	if c.SoftwareVersion == "" {
		c.SoftwareVersion = DefaultSoftwareVersion
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 2
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.Pool == nil {
		c.Pool = NewPuddlePool
	}
	if c.SelectBroker == nil {
		c.SelectBroker = DefaultBrokerSelector
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

// Dial connects to addr and completes the ApiVersions handshake.
func Dial(ctx context.Context, addr string, config Config) (*Conn, error) {
	config = config.withDefaults()

	netConn, err := config.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	clientID := config.ClientID
	conn := NewConn(netConn, ConnConfig{
		ClientID:     &clientID,
		MaxFrameSize: config.MaxFrameSize,
		Logger:       config.Logger,
	})

	software := Software{Name: config.SoftwareName, Version: config.SoftwareVersion}
	if _, err := conn.Handshake(ctx, config.HandshakeVersion, software); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Client sends requests to a set of brokers over pooled, multiplexed
// connections.
type Client struct {
	brokers Brokers
	config  Config
	logger  zerolog.Logger
	tracer  trace.Tracer

	mu     sync.RWMutex
	pools  map[string]*BrokerPool
	closed bool

	next atomic.Uint32 // round robin over brokers for unrouted requests

	stopHealthCheck chan struct{}
	stats           clientStatsCollector
}

// NewClient creates a client for the given brokers.
// For a single broker, use: NewClient(NewStaticBrokers("host:9092"), config)
func NewClient(brokers Brokers, config Config) (*Client, error) {
	if len(brokers.List()) == 0 {
		return nil, ErrNoBrokers
	}

	config = config.withDefaults()

	client := &Client{
		brokers:         brokers,
		config:          config,
		logger:          *config.Logger,
		tracer:          newTracer(config.TracerProvider),
		pools:           make(map[string]*BrokerPool),
		stopHealthCheck: make(chan struct{}),
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close closes the client and destroys all connections in all pools.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.config.HealthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	for _, bp := range c.pools {
		bp.pool.Close()
	}
}

// Execute sends req and decodes the answer into resp.
//
// Requests carrying a routing key go to the broker chosen by the selector;
// others are spread over the brokers in turn. A non-zero error code inside resp
// is not an error at this level.
func (c *Client) Execute(ctx context.Context, req api.Request, resp api.Response) error {
	addr, err := c.selectBroker(req)
	if err != nil {
		c.stats.recordError(err)
		return err
	}
	return c.ExecuteOn(ctx, addr, req, resp)
}

// ExecuteOn sends req to the broker at addr.
func (c *Client) ExecuteOn(ctx context.Context, addr string, req api.Request, resp api.Response) error {
	ctx, span := c.startSpan(ctx, addr, req)
	err := c.executeOn(ctx, addr, req, resp)
	endSpan(span, err)
	return err
}

func (c *Client) executeOn(ctx context.Context, addr string, req api.Request, resp api.Response) error {
	c.stats.recordRequest()

	bp, err := c.getOrCreatePool(addr)
	if err != nil {
		c.stats.recordError(err)
		return err
	}

	err = bp.Execute(ctx, req, resp)
	c.stats.recordError(err)
	return err
}

// Send is Execute with a freshly allocated response.
func (c *Client) Send(ctx context.Context, req api.Request) (api.Response, error) {
	resp := req.NewResponse()
	if err := c.Execute(ctx, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) selectBroker(req api.Request) (string, error) {
	brokers := c.brokers.List()
	if len(brokers) == 0 {
		return "", ErrNoBrokers
	}

	var idx int
	if routed, ok := req.(api.Routed); ok {
		idx = c.config.SelectBroker(routed.RoutingKey(), len(brokers))
	} else {
		idx = int(c.next.Add(1)-1) % len(brokers)
	}

	if idx < 0 || idx >= len(brokers) {
		return "", fmt.Errorf("kwire: broker selector returned %d for %d brokers", idx, len(brokers))
	}
	return brokers[idx], nil
}

// getOrCreatePool gets or creates the pool for the broker at addr.
func (c *Client) getOrCreatePool(addr string) (*BrokerPool, error) {
	c.mu.RLock()
	bp, exists := c.pools[addr]
	closed := c.closed
	c.mu.RUnlock()
	if exists {
		return bp, nil
	}
	if closed {
		return nil, ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if bp, exists := c.pools[addr]; exists {
		return bp, nil
	}

	bp, err := c.createPool(addr)
	if err != nil {
		return nil, err
	}
	c.pools[addr] = bp

	c.logger.Debug().Str("broker", addr).Msg("broker pool created")
	return bp, nil
}

func (c *Client) createPool(addr string) (*BrokerPool, error) {
	constructor := func(ctx context.Context) (*Conn, error) {
		if c.config.constructor != nil {
			return c.config.constructor(ctx, addr)
		}
		return Dial(ctx, addr, c.config)
	}

	pool, err := c.config.Pool(constructor, c.config.MaxSize)
	if err != nil {
		return nil, err
	}

	bp := &BrokerPool{addr: addr, pool: pool}
	if c.config.NewCircuitBreaker != nil {
		bp.circuitBreaker = c.config.NewCircuitBreaker(addr)
	}
	return bp, nil
}

// healthCheckLoop periodically checks idle connections for health and lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*BrokerPool, 0, len(c.pools))
	for _, bp := range c.pools {
		pools = append(pools, bp)
	}
	c.mu.RUnlock()

	for _, bp := range pools {
		c.checkPoolConnections(bp.pool)
	}
}

// checkPoolConnections destroys idle connections that are stale or broken.
func (c *Client) checkPoolConnections(pool Pool) {
	now := time.Now()

	for _, res := range pool.AcquireAllIdle() {
		if c.config.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.config.MaxConnLifetime {
			res.Destroy()
			continue
		}

		// a connection with calls in flight is busy, not idle
		conn := res.Value()
		if c.config.MaxConnIdleTime > 0 && res.IdleDuration() > c.config.MaxConnIdleTime && conn.Pending() == 0 {
			res.Destroy()
			continue
		}

		if err := c.healthCheck(conn); err != nil {
			c.logger.Debug().Err(err).Str("broker", conn.RemoteAddr().String()).Msg("health check failed")
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// healthCheck sends ApiVersions v0, which every broker answers.
func (c *Client) healthCheck(conn *Conn) error {
	if err := conn.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.HealthCheckInterval)
	defer cancel()

	resp := &api.APIVersionsResponse{}
	call, err := conn.Submit(ctx, &api.APIVersionsRequest{}, 0)
	if err != nil {
		return err
	}
	if err := call.Wait(ctx, resp); err != nil {
		return err
	}
	return resp.ErrorCode.Err()
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// AllPoolStats returns stats for all broker pools.
func (c *Client) AllPoolStats() []BrokerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]BrokerPoolStats, 0, len(c.pools))
	for _, bp := range c.pools {
		stats = append(stats, bp.Stats())
	}
	return stats
}
