package kwire

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports client and pool statistics to Prometheus.
//
//	prometheus.MustRegister(kwire.NewCollector(client))
type Collector struct {
	client *Client

	requests        *prometheus.Desc
	errors          *prometheus.Desc
	poolConns       *prometheus.Desc
	poolAcquires    *prometheus.Desc
	poolWaitSeconds *prometheus.Desc
	poolCreated     *prometheus.Desc
	poolDestroyed   *prometheus.Desc
	breakerState    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(client *Client) *Collector {
	return &Collector{
		client: client,
		requests: prometheus.NewDesc("kwire_requests_total",
			"Requests submitted to brokers.", nil, nil),
		errors: prometheus.NewDesc("kwire_errors_total",
			"Failed requests by kind.", []string{"kind"}, nil),
		poolConns: prometheus.NewDesc("kwire_pool_connections",
			"Connections per broker by state.", []string{"broker", "state"}, nil),
		poolAcquires: prometheus.NewDesc("kwire_pool_acquires_total",
			"Connection acquisitions per broker.", []string{"broker"}, nil),
		poolWaitSeconds: prometheus.NewDesc("kwire_pool_acquire_wait_seconds_total",
			"Time spent waiting for a connection per broker.", []string{"broker"}, nil),
		poolCreated: prometheus.NewDesc("kwire_pool_connections_created_total",
			"Connections opened per broker.", []string{"broker"}, nil),
		poolDestroyed: prometheus.NewDesc("kwire_pool_connections_destroyed_total",
			"Connections closed per broker.", []string{"broker"}, nil),
		breakerState: prometheus.NewDesc("kwire_circuit_breaker_state",
			"Circuit breaker state per broker: 0 closed, 1 half-open, 2 open.", []string{"broker"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.poolConns
	ch <- c.poolAcquires
	ch <- c.poolWaitSeconds
	ch <- c.poolCreated
	ch <- c.poolDestroyed
	ch <- c.breakerState
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.client.Stats()

	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(s.Requests))
	for kind, n := range map[string]uint64{
		"transport":            s.TransportErrors,
		"incompatible_version": s.IncompatibleVersions,
		"broker":               s.BrokerErrors,
		"canceled":             s.Canceled,
		"other":                s.UnclassifiedErrors(),
	} {
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(n), kind)
	}

	for _, bs := range c.client.AllPoolStats() {
		p := bs.PoolStats
		ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(p.IdleConns), bs.Addr, "idle")
		ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(p.ActiveConns), bs.Addr, "active")
		ch <- prometheus.MustNewConstMetric(c.poolAcquires, prometheus.CounterValue, float64(p.AcquireCount), bs.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolWaitSeconds, prometheus.CounterValue, float64(p.AcquireWaitTimeNs)/1e9, bs.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolCreated, prometheus.CounterValue, float64(p.CreatedConns), bs.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolDestroyed, prometheus.CounterValue, float64(p.DestroyedConns), bs.Addr)
		ch <- prometheus.MustNewConstMetric(c.breakerState, prometheus.GaugeValue, float64(bs.CircuitBreakerState), bs.Addr)
	}
}
