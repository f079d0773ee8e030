package kwire

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pior/kwire/api"
	"github.com/pior/kwire/wire"
)

// Catalogue holds the version ranges a broker advertised at handshake.
// It is immutable once built.
type Catalogue struct {
	versions map[api.Key]wire.VersionRange
}

// NewCatalogue builds a catalogue from an ApiVersions response. Apis unknown to
// this client are skipped.
func NewCatalogue(keys []api.APIVersionsKey) *Catalogue {
	c := &Catalogue{versions: make(map[api.Key]wire.VersionRange, len(keys))}
	for _, k := range keys {
		key, err := api.ParseKey(k.APIKey)
		if err != nil {
			continue
		}
		c.versions[key] = wire.VersionRange{Min: k.MinVersion, Max: k.MaxVersion}
	}
	return c
}

// Lookup returns the range the broker supports for key.
func (c *Catalogue) Lookup(key api.Key) (wire.VersionRange, bool) {
	r, ok := c.versions[key]
	return r, ok
}

// Keys returns the advertised apis in ascending order.
func (c *Catalogue) Keys() []api.Key {
	keys := make([]api.Key, 0, len(c.versions))
	for k := range c.versions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Catalogue) Len() int {
	return len(c.versions)
}

// Negotiate picks the version req is sent with: the highest version both sides
// support.
func (c *Catalogue) Negotiate(req api.Request) (int16, error) {
	server, ok := c.Lookup(req.Key())
	if !ok {
		return 0, &VersionError{Key: req.Key(), Client: req.Versions()}
	}
	return Negotiate(req.Key(), req.Versions(), server)
}

// Negotiate intersects the client and server ranges for key and returns the
// upper bound of the intersection.
func Negotiate(key api.Key, client, server wire.VersionRange) (int16, error) {
	hi := min(client.Max, server.Max)
	lo := max(client.Min, server.Min)
	if hi < lo {
		return 0, &VersionError{Key: key, Client: client, Server: server, Known: true}
	}
	return hi, nil
}

// ErrNoHandshake is returned by Conn.Execute before the connection learned the
// broker's versions.
var ErrNoHandshake = errors.New("kwire: handshake not completed")

// Negotiate picks the version of req against the catalogue of the connection.
func (c *Conn) Negotiate(req api.Request) (int16, error) {
	cat := c.Catalogue()
	if cat == nil {
		return 0, ErrNoHandshake
	}
	return cat.Negotiate(req)
}

// Software identifies the client to brokers accepting ApiVersions v3+.
type Software struct {
	Name    string
	Version string
}

// Handshake sends ApiVersions at version and stores the resulting catalogue on
// the connection.
//
// A broker too old for version answers UNSUPPORTED_VERSION with the v0 body and
// its own ApiVersions range; the handshake is then retried once at the highest
// version it advertised.
func (c *Conn) Handshake(ctx context.Context, version int16, software Software) (*Catalogue, error) {
	resp, err := c.apiVersions(ctx, version, software)
	if err != nil {
		return nil, err
	}

	if resp.ErrorCode == api.UnsupportedVersion && version > 0 {
		retry := int16(0)
		for _, k := range resp.APIKeys {
			if k.APIKey == int16(api.APIVersions) {
				retry = min(k.MaxVersion, version-1)
			}
		}
		c.logger.Debug().Int16("version", version).Int16("retry", retry).Msg("api versions downgraded")

		resp, err = c.apiVersions(ctx, retry, software)
		if err != nil {
			return nil, err
		}
	}

	if err := resp.ErrorCode.Err(); err != nil {
		return nil, fmt.Errorf("kwire: api versions handshake: %w", err)
	}

	cat := NewCatalogue(resp.APIKeys)
	c.catalogue.Store(cat)
	c.logger.Debug().Int("apis", cat.Len()).Msg("handshake completed")
	return cat, nil
}

func (c *Conn) apiVersions(ctx context.Context, version int16, software Software) (*api.APIVersionsResponse, error) {
	req := &api.APIVersionsRequest{}
	if version >= 3 {
		req.ClientSoftwareName = wire.Some(software.Name)
		req.ClientSoftwareVersion = wire.Some(software.Version)
	}

	call, err := c.Submit(ctx, req, version)
	if err != nil {
		return nil, err
	}
	payload, err := call.wait(ctx)
	if err != nil {
		return nil, err
	}

	resp := &api.APIVersionsResponse{}
	derr := call.decode(payload, resp)
	if derr == nil {
		return resp, nil
	}
	if version == 0 {
		return nil, derr
	}

	// an UNSUPPORTED_VERSION answer is encoded as v0 whatever was asked
	v0 := &Call{key: api.APIVersions}
	resp = &api.APIVersionsResponse{}
	if err := v0.decode(payload, resp); err != nil || resp.ErrorCode != api.UnsupportedVersion {
		return nil, derr
	}
	return resp, nil
}
