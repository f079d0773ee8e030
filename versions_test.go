package kwire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pior/kwire/api"
	"github.com/pior/kwire/internal/testutils"
	"github.com/pior/kwire/wire"
)

func vr(lo, hi int16) wire.VersionRange {
	return wire.VersionRange{Min: lo, Max: hi}
}

// thresholdRequest is a request switching to the flexible encoding at v2.
type thresholdRequest struct {
	api.HeartbeatRequest
}

func (r *thresholdRequest) Versions() wire.VersionRange { return vr(1, 2) }
func (r *thresholdRequest) FlexibleVersion() int16      { return 2 }

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		client wire.VersionRange
		server wire.VersionRange
		want   int16
	}{
		{"client inside server", vr(1, 2), vr(0, 3), 2},
		{"server inside client", vr(0, 12), vr(0, 9), 9},
		{"overlap low", vr(3, 6), vr(0, 4), 4},
		{"overlap high", vr(0, 4), vr(2, 8), 4},
		{"single common version", vr(0, 3), vr(3, 7), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Negotiate(api.Metadata, tt.client, tt.server)
			require.NoError(t, err)
			require.Equal(t, tt.want, v)
		})
	}
}

func TestNegotiateIncompatible(t *testing.T) {
	_, err := Negotiate(api.Metadata, vr(4, 5), vr(0, 3))
	require.ErrorIs(t, err, ErrIncompatibleVersion)

	var verr *VersionError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, api.Metadata, verr.Key)
	require.True(t, verr.Known)
	require.Equal(t, "kwire: no common version for Metadata: client 4..5, broker 0..3", err.Error())
}

func TestCatalogueNegotiateSelectsMode(t *testing.T) {
	cat := NewCatalogue([]api.APIVersionsKey{{APIKey: int16(api.Heartbeat), MinVersion: 0, MaxVersion: 3}})

	req := &thresholdRequest{}
	v, err := cat.Negotiate(req)
	require.NoError(t, err)
	require.Equal(t, int16(2), v)
	require.True(t, api.IsFlexible(req, v))
	require.False(t, api.IsFlexible(req, 1))
}

func TestCatalogue(t *testing.T) {
	cat := NewCatalogue([]api.APIVersionsKey{
		{APIKey: int16(api.Metadata), MinVersion: 0, MaxVersion: 9},
		{APIKey: int16(api.APIVersions), MinVersion: 0, MaxVersion: 3},
		{APIKey: 999, MinVersion: 0, MaxVersion: 1},
	})

	require.Equal(t, 2, cat.Len())
	require.Equal(t, []api.Key{api.Metadata, api.APIVersions}, cat.Keys())

	r, ok := cat.Lookup(api.Metadata)
	require.True(t, ok)
	require.Equal(t, vr(0, 9), r)

	_, err := cat.Negotiate(&api.HeartbeatRequest{})
	var verr *VersionError
	require.True(t, errors.As(err, &verr))
	require.False(t, verr.Known)
	require.Equal(t, "kwire: broker does not support Heartbeat", err.Error())
}

func TestConnExecuteRequiresHandshake(t *testing.T) {
	conn, _ := pipeConn(t)
	err := conn.Execute(context.Background(), &api.MetadataRequest{}, &api.MetadataResponse{})
	require.ErrorIs(t, err, ErrNoHandshake)
}

func TestHandshakeThenMetadata(t *testing.T) {
	broker := testutils.NewBroker(t, func(c *testutils.BrokerConn) {
		if _, err := c.ServeHandshake([]testutils.APIVersion{{Key: 3, MinVersion: 0, MaxVersion: 9}}); err != nil {
			return
		}

		_ = c.Serve(func(req testutils.Request) ([]byte, bool) {
			if req.APIKey != 3 || req.APIVersion != 9 {
				return nil, false
			}
			body, err := wire.Marshal(&api.MetadataResponse{
				Brokers:   []api.MetadataBroker{{NodeID: 1, Host: "localhost", Port: 9092}},
				ClusterID: strptr("cluster"),
			}, 9, true)
			if err != nil {
				return nil, false
			}
			return body, true
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, broker.Addr(), Config{})
	require.NoError(t, err)
	defer conn.Close()

	cat := conn.Catalogue()
	require.NotNil(t, cat)
	r, ok := cat.Lookup(api.Metadata)
	require.True(t, ok)
	require.Equal(t, vr(0, 9), r)

	v, err := conn.Negotiate(&api.MetadataRequest{})
	require.NoError(t, err)
	require.Equal(t, int16(9), v)

	resp := &api.MetadataResponse{}
	require.NoError(t, conn.Execute(ctx, &api.MetadataRequest{}, resp))
	require.Equal(t, "cluster", *resp.ClusterID)

	b, ok := resp.Broker(1)
	require.True(t, ok)
	require.Equal(t, "localhost", b.Host)
}

func TestHandshakeFallsBackOnUnsupportedVersion(t *testing.T) {
	keys := []testutils.APIVersion{
		{Key: 18, MinVersion: 0, MaxVersion: 2},
		{Key: 12, MinVersion: 0, MaxVersion: 4},
	}
	retried := make(chan int16, 1)

	broker := testutils.NewBroker(t, func(c *testutils.BrokerConn) {
		req, err := c.RejectHandshake(keys)
		if err != nil || req.APIVersion != 3 {
			return
		}
		v, err := c.ServeHandshake(keys)
		if err != nil {
			return
		}
		retried <- v
		_, _ = c.ReadRequest()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, broker.Addr(), Config{HandshakeVersion: 3})
	require.NoError(t, err)
	defer conn.Close()

	require.Equal(t, int16(2), <-retried)

	v, err := conn.Negotiate(&api.HeartbeatRequest{})
	require.NoError(t, err)
	require.Equal(t, int16(4), v)
}

func TestHandshakeBrokerError(t *testing.T) {
	broker := testutils.NewBroker(t, func(c *testutils.BrokerConn) {
		// a v0 request rejected as unsupported has nowhere to fall back to
		_, _ = c.RejectHandshake([]testutils.APIVersion{{Key: 18, MinVersion: 0, MaxVersion: 0}})
		_, _ = c.ReadRequest()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Dial(ctx, broker.Addr(), Config{})
	require.ErrorIs(t, err, api.UnsupportedVersion)
	require.False(t, ShouldCloseConnection(err))
}
