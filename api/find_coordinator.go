package api

import "github.com/pior/kwire/wire"

// FindCoordinatorRequest locates the coordinator for a group or transactional id.
type FindCoordinatorRequest struct {
	CoordinatorKey string
	KeyType        CoordinatorType // v1+
	Tags           wire.TaggedFields
}

func (r *FindCoordinatorRequest) Key() Key                    { return FindCoordinator }
func (r *FindCoordinatorRequest) Versions() wire.VersionRange { return versions(0, 3) }
func (r *FindCoordinatorRequest) FlexibleVersion() int16      { return 3 }
func (r *FindCoordinatorRequest) NewResponse() Response       { return &FindCoordinatorResponse{} }
func (r *FindCoordinatorRequest) RoutingKey() string          { return r.CoordinatorKey }

func (r *FindCoordinatorRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("key", wire.String(&r.CoordinatorKey)),
		wire.F("key_type", coordinatorType(&r.KeyType)).Since(1),
		wire.Tagged(&r.Tags),
	}
}

type FindCoordinatorResponse struct {
	ThrottleTimeMs int32 // v1+
	ErrorCode      ErrorCode
	ErrorMessage   *string // v1+
	NodeID         int32
	Host           string
	Port           int32
	Tags           wire.TaggedFields
}

func (r *FindCoordinatorResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("error_message", wire.NullableString(&r.ErrorMessage)).Since(1),
		wire.F("node_id", wire.Int32(&r.NodeID)),
		wire.F("host", wire.String(&r.Host)),
		wire.F("port", wire.Int32(&r.Port)),
		wire.Tagged(&r.Tags),
	}
}
