// Package kwire is a client for the Kafka wire protocol.
//
// A Conn is one multiplexed connection: requests are framed and written in
// submission order, each tagged with a correlation id, and responses are handed
// back to their callers in whatever order the broker sends them.
//
//	conn, err := kwire.Dial(ctx, "localhost:9092", kwire.Config{})
//	...
//	resp := &api.MetadataResponse{}
//	err = conn.Execute(ctx, &api.MetadataRequest{}, resp)
//
// Every connection starts with an ApiVersions handshake. Execute then sends each
// request at the highest version both sides support, in the standard or the
// flexible encoding as that version requires.
//
// A Client adds per-broker connection pools, circuit breakers, routing of group
// requests to a stable broker, health checks, statistics, Prometheus metrics and
// OpenTelemetry spans.
package kwire
