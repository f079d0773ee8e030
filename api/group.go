package api

import "github.com/pior/kwire/wire"

// Group membership messages. They are routed by group id so that, without a
// coordinator lookup, calls for one group keep landing on the same broker.

type HeartbeatRequest struct {
	GroupID         string
	GenerationID    int32
	MemberID        string
	GroupInstanceID *string // v3+
	Tags            wire.TaggedFields
}

func (r *HeartbeatRequest) Key() Key                    { return Heartbeat }
func (r *HeartbeatRequest) Versions() wire.VersionRange { return versions(0, 4) }
func (r *HeartbeatRequest) FlexibleVersion() int16      { return 4 }
func (r *HeartbeatRequest) NewResponse() Response       { return &HeartbeatResponse{} }
func (r *HeartbeatRequest) RoutingKey() string          { return r.GroupID }

func (r *HeartbeatRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("generation_id", wire.Int32(&r.GenerationID)),
		wire.F("member_id", wire.String(&r.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&r.GroupInstanceID)).Since(3),
		wire.Tagged(&r.Tags),
	}
}

type HeartbeatResponse struct {
	ThrottleTimeMs int32 // v1+
	ErrorCode      ErrorCode
	Tags           wire.TaggedFields
}

func (r *HeartbeatResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.Tagged(&r.Tags),
	}
}

// JoinGroupRequest asks to join a consumer group.
// RebalanceTimeoutMs must be set whenever version 1 or later is negotiated.
type JoinGroupRequest struct {
	GroupID            string
	SessionTimeoutMs   int32
	RebalanceTimeoutMs wire.Versioned[int32] // v1+
	MemberID           string
	GroupInstanceID    *string // v5+
	ProtocolType       string
	Protocols          []JoinGroupProtocol
	Tags               wire.TaggedFields
}

func (r *JoinGroupRequest) Key() Key                    { return JoinGroup }
func (r *JoinGroupRequest) Versions() wire.VersionRange { return versions(0, 6) }
func (r *JoinGroupRequest) FlexibleVersion() int16      { return 6 }
func (r *JoinGroupRequest) NewResponse() Response       { return &JoinGroupResponse{} }
func (r *JoinGroupRequest) RoutingKey() string          { return r.GroupID }

func (r *JoinGroupRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("session_timeout_ms", wire.Int32(&r.SessionTimeoutMs)),
		wire.F("rebalance_timeout_ms", wire.Opt(&r.RebalanceTimeoutMs, wire.Int32)).Since(1),
		wire.F("member_id", wire.String(&r.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&r.GroupInstanceID)).Since(5),
		wire.F("protocol_type", wire.String(&r.ProtocolType)),
		wire.F("protocols", wire.Array(&r.Protocols, func(p *JoinGroupProtocol) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&r.Tags),
	}
}

type JoinGroupProtocol struct {
	Name     string
	Metadata []byte
	Tags     wire.TaggedFields
}

func (p *JoinGroupProtocol) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&p.Name)),
		wire.F("metadata", wire.Bytes(&p.Metadata)),
		wire.Tagged(&p.Tags),
	}
}

type JoinGroupResponse struct {
	ThrottleTimeMs int32 // v2+
	ErrorCode      ErrorCode
	GenerationID   int32
	ProtocolName   string
	Leader         string
	MemberID       string
	Members        []JoinGroupMember
	Tags           wire.TaggedFields
}

func (r *JoinGroupResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(2),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("generation_id", wire.Int32(&r.GenerationID)),
		wire.F("protocol_name", wire.String(&r.ProtocolName)),
		wire.F("leader", wire.String(&r.Leader)),
		wire.F("member_id", wire.String(&r.MemberID)),
		wire.F("members", wire.Array(&r.Members, func(m *JoinGroupMember) wire.Value { return wire.Struct(m) })),
		wire.Tagged(&r.Tags),
	}
}

// IsLeader reports whether the responding member was elected group leader.
func (r *JoinGroupResponse) IsLeader() bool {
	return r.Leader != "" && r.Leader == r.MemberID
}

type JoinGroupMember struct {
	MemberID        string
	GroupInstanceID *string // v5+
	Metadata        []byte
	Tags            wire.TaggedFields
}

func (m *JoinGroupMember) Fields() []wire.Field {
	return []wire.Field{
		wire.F("member_id", wire.String(&m.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&m.GroupInstanceID)).Since(5),
		wire.F("metadata", wire.Bytes(&m.Metadata)),
		wire.Tagged(&m.Tags),
	}
}

type SyncGroupRequest struct {
	GroupID         string
	GenerationID    int32
	MemberID        string
	GroupInstanceID *string // v3+
	ProtocolType    *string // v5+
	ProtocolName    *string // v5+
	Assignments     []SyncGroupAssignment
	Tags            wire.TaggedFields
}

func (r *SyncGroupRequest) Key() Key                    { return SyncGroup }
func (r *SyncGroupRequest) Versions() wire.VersionRange { return versions(0, 5) }
func (r *SyncGroupRequest) FlexibleVersion() int16      { return 4 }
func (r *SyncGroupRequest) NewResponse() Response       { return &SyncGroupResponse{} }
func (r *SyncGroupRequest) RoutingKey() string          { return r.GroupID }

func (r *SyncGroupRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("generation_id", wire.Int32(&r.GenerationID)),
		wire.F("member_id", wire.String(&r.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&r.GroupInstanceID)).Since(3),
		wire.F("protocol_type", wire.NullableString(&r.ProtocolType)).Since(5),
		wire.F("protocol_name", wire.NullableString(&r.ProtocolName)).Since(5),
		wire.F("assignments", wire.Array(&r.Assignments, func(a *SyncGroupAssignment) wire.Value { return wire.Struct(a) })),
		wire.Tagged(&r.Tags),
	}
}

type SyncGroupAssignment struct {
	MemberID   string
	Assignment []byte
	Tags       wire.TaggedFields
}

func (a *SyncGroupAssignment) Fields() []wire.Field {
	return []wire.Field{
		wire.F("member_id", wire.String(&a.MemberID)),
		wire.F("assignment", wire.Bytes(&a.Assignment)),
		wire.Tagged(&a.Tags),
	}
}

type SyncGroupResponse struct {
	ThrottleTimeMs int32 // v1+
	ErrorCode      ErrorCode
	ProtocolType   *string // v5+
	ProtocolName   *string // v5+
	Assignment     []byte
	Tags           wire.TaggedFields
}

func (r *SyncGroupResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("protocol_type", wire.NullableString(&r.ProtocolType)).Since(5),
		wire.F("protocol_name", wire.NullableString(&r.ProtocolName)).Since(5),
		wire.F("assignment", wire.Bytes(&r.Assignment)),
		wire.Tagged(&r.Tags),
	}
}

// LeaveGroupRequest removes members from a group. Versions 0 to 2 carry a
// single MemberID; from version 3 the request carries the Members batch.
type LeaveGroupRequest struct {
	GroupID  string
	MemberID string // v0-2
	Members  []LeaveGroupMember
	Tags     wire.TaggedFields
}

func (r *LeaveGroupRequest) Key() Key                    { return LeaveGroup }
func (r *LeaveGroupRequest) Versions() wire.VersionRange { return versions(0, 4) }
func (r *LeaveGroupRequest) FlexibleVersion() int16      { return 4 }
func (r *LeaveGroupRequest) NewResponse() Response       { return &LeaveGroupResponse{} }
func (r *LeaveGroupRequest) RoutingKey() string          { return r.GroupID }

func (r *LeaveGroupRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("member_id", wire.String(&r.MemberID)).Until(2),
		wire.F("members", wire.Array(&r.Members, func(m *LeaveGroupMember) wire.Value { return wire.Struct(m) })).Since(3),
		wire.Tagged(&r.Tags),
	}
}

type LeaveGroupMember struct {
	MemberID        string
	GroupInstanceID *string
	Tags            wire.TaggedFields
}

func (m *LeaveGroupMember) Fields() []wire.Field {
	return []wire.Field{
		wire.F("member_id", wire.String(&m.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&m.GroupInstanceID)),
		wire.Tagged(&m.Tags),
	}
}

type LeaveGroupResponse struct {
	ThrottleTimeMs int32 // v1+
	ErrorCode      ErrorCode
	Members        []LeaveGroupMemberResponse // v3+
	Tags           wire.TaggedFields
}

func (r *LeaveGroupResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("members", wire.Array(&r.Members, func(m *LeaveGroupMemberResponse) wire.Value { return wire.Struct(m) })).Since(3),
		wire.Tagged(&r.Tags),
	}
}

type LeaveGroupMemberResponse struct {
	MemberID        string
	GroupInstanceID *string
	ErrorCode       ErrorCode
	Tags            wire.TaggedFields
}

func (m *LeaveGroupMemberResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("member_id", wire.String(&m.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&m.GroupInstanceID)),
		wire.F("error_code", errorCode(&m.ErrorCode)),
		wire.Tagged(&m.Tags),
	}
}

type ListGroupsRequest struct {
	StatesFilter []string // v4+
	Tags         wire.TaggedFields
}

func (r *ListGroupsRequest) Key() Key                    { return ListGroups }
func (r *ListGroupsRequest) Versions() wire.VersionRange { return versions(0, 4) }
func (r *ListGroupsRequest) FlexibleVersion() int16      { return 3 }
func (r *ListGroupsRequest) NewResponse() Response       { return &ListGroupsResponse{} }

func (r *ListGroupsRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("states_filter", wire.Array(&r.StatesFilter, wire.String)).Since(4),
		wire.Tagged(&r.Tags),
	}
}

type ListGroupsResponse struct {
	ThrottleTimeMs int32 // v1+
	ErrorCode      ErrorCode
	Groups         []ListedGroup
	Tags           wire.TaggedFields
}

func (r *ListGroupsResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("groups", wire.Array(&r.Groups, func(g *ListedGroup) wire.Value { return wire.Struct(g) })),
		wire.Tagged(&r.Tags),
	}
}

type ListedGroup struct {
	GroupID      string
	ProtocolType string
	GroupState   string // v4+
	Tags         wire.TaggedFields
}

func (g *ListedGroup) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&g.GroupID)),
		wire.F("protocol_type", wire.String(&g.ProtocolType)),
		wire.F("group_state", wire.String(&g.GroupState)).Since(4),
		wire.Tagged(&g.Tags),
	}
}

type DescribeGroupsRequest struct {
	Groups                      []string
	IncludeAuthorizedOperations bool // v3+
	Tags                        wire.TaggedFields
}

func (r *DescribeGroupsRequest) Key() Key                    { return DescribeGroups }
func (r *DescribeGroupsRequest) Versions() wire.VersionRange { return versions(0, 5) }
func (r *DescribeGroupsRequest) FlexibleVersion() int16      { return 5 }
func (r *DescribeGroupsRequest) NewResponse() Response       { return &DescribeGroupsResponse{} }

func (r *DescribeGroupsRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("groups", wire.Array(&r.Groups, wire.String)),
		wire.F("include_authorized_operations", wire.Bool(&r.IncludeAuthorizedOperations)).Since(3),
		wire.Tagged(&r.Tags),
	}
}

type DescribeGroupsResponse struct {
	ThrottleTimeMs int32 // v1+
	Groups         []DescribedGroup
	Tags           wire.TaggedFields
}

func (r *DescribeGroupsResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("groups", wire.Array(&r.Groups, func(g *DescribedGroup) wire.Value { return wire.Struct(g) })),
		wire.Tagged(&r.Tags),
	}
}

type DescribedGroup struct {
	ErrorCode            ErrorCode
	GroupID              string
	GroupState           string
	ProtocolType         string
	ProtocolData         string
	Members              []DescribedGroupMember
	AuthorizedOperations int32 // v3+
	Tags                 wire.TaggedFields
}

func (g *DescribedGroup) Fields() []wire.Field {
	return []wire.Field{
		wire.F("error_code", errorCode(&g.ErrorCode)),
		wire.F("group_id", wire.String(&g.GroupID)),
		wire.F("group_state", wire.String(&g.GroupState)),
		wire.F("protocol_type", wire.String(&g.ProtocolType)),
		wire.F("protocol_data", wire.String(&g.ProtocolData)),
		wire.F("members", wire.Array(&g.Members, func(m *DescribedGroupMember) wire.Value { return wire.Struct(m) })),
		wire.F("authorized_operations", wire.Int32(&g.AuthorizedOperations)).Since(3),
		wire.Tagged(&g.Tags),
	}
}

type DescribedGroupMember struct {
	MemberID         string
	GroupInstanceID  *string // v4+
	ClientID         string
	ClientHost       string
	MemberMetadata   []byte
	MemberAssignment []byte
	Tags             wire.TaggedFields
}

func (m *DescribedGroupMember) Fields() []wire.Field {
	return []wire.Field{
		wire.F("member_id", wire.String(&m.MemberID)),
		wire.F("group_instance_id", wire.NullableString(&m.GroupInstanceID)).Since(4),
		wire.F("client_id", wire.String(&m.ClientID)),
		wire.F("client_host", wire.String(&m.ClientHost)),
		wire.F("member_metadata", wire.Bytes(&m.MemberMetadata)),
		wire.F("member_assignment", wire.Bytes(&m.MemberAssignment)),
		wire.Tagged(&m.Tags),
	}
}
