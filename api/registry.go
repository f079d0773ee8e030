package api

import (
	"slices"

	"github.com/pior/kwire/wire"
)

var registry = map[Key]func() Request{
	Produce:         func() Request { return &ProduceRequest{} },
	Fetch:           func() Request { return &FetchRequest{} },
	ListOffsets:     func() Request { return &ListOffsetsRequest{} },
	Metadata:        func() Request { return &MetadataRequest{} },
	OffsetCommit:    func() Request { return &OffsetCommitRequest{} },
	OffsetFetch:     func() Request { return &OffsetFetchRequest{} },
	FindCoordinator: func() Request { return &FindCoordinatorRequest{} },
	JoinGroup:       func() Request { return &JoinGroupRequest{} },
	Heartbeat:       func() Request { return &HeartbeatRequest{} },
	LeaveGroup:      func() Request { return &LeaveGroupRequest{} },
	SyncGroup:       func() Request { return &SyncGroupRequest{} },
	DescribeGroups:  func() Request { return &DescribeGroupsRequest{} },
	ListGroups:      func() Request { return &ListGroupsRequest{} },
	APIVersions:     func() Request { return &APIVersionsRequest{} },
}

// New returns an empty request for key, or false when this package does not
// implement it.
func New(key Key) (Request, bool) {
	fn, ok := registry[key]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Implemented returns the keys this package declares, in ascending order.
func Implemented() []Key {
	keys := make([]Key, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ClientVersions returns the version range implemented for key.
func ClientVersions(key Key) (wire.VersionRange, bool) {
	req, ok := New(key)
	if !ok {
		return wire.VersionRange{}, false
	}
	return req.Versions(), true
}
