package kwire

import (
	"context"
	"net"
	"strconv"

	"github.com/pior/kwire/api"
)

// APIVersions returns the versions the broker at addr advertised when the
// client connected to it.
func (c *Client) APIVersions(ctx context.Context, addr string) (*Catalogue, error) {
	bp, err := c.getOrCreatePool(addr)
	if err != nil {
		return nil, err
	}
	return bp.catalogue(ctx)
}

// Metadata fetches the cluster layout for the given topics, or for all topics
// when none is given.
func (c *Client) Metadata(ctx context.Context, topics ...string) (*api.MetadataResponse, error) {
	req := &api.MetadataRequest{}
	for _, name := range topics {
		req.Topics = append(req.Topics, api.MetadataRequestTopic{Name: &name})
	}

	resp := &api.MetadataResponse{}
	if err := c.Execute(ctx, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindCoordinator locates the coordinator of a group or transaction and returns
// its address.
func (c *Client) FindCoordinator(ctx context.Context, key string, keyType api.CoordinatorType) (string, error) {
	req := &api.FindCoordinatorRequest{CoordinatorKey: key, KeyType: keyType}
	resp := &api.FindCoordinatorResponse{}
	if err := c.Execute(ctx, req, resp); err != nil {
		return "", err
	}
	if err := resp.ErrorCode.Err(); err != nil {
		c.stats.recordBrokerError()
		return "", err
	}
	return net.JoinHostPort(resp.Host, strconv.Itoa(int(resp.Port))), nil
}

// ListGroups lists the groups coordinated by the broker at addr.
func (c *Client) ListGroups(ctx context.Context, addr string) ([]api.ListedGroup, error) {
	resp := &api.ListGroupsResponse{}
	if err := c.ExecuteOn(ctx, addr, &api.ListGroupsRequest{}, resp); err != nil {
		return nil, err
	}
	if err := resp.ErrorCode.Err(); err != nil {
		c.stats.recordBrokerError()
		return nil, err
	}
	return resp.Groups, nil
}
