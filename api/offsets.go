package api

import "github.com/pior/kwire/wire"

// OffsetCommitRequest commits consumed offsets for a group.
type OffsetCommitRequest struct {
	GroupID         string
	GenerationID    int32   // v1+
	MemberID        string  // v1+
	GroupInstanceID *string // v7+
	RetentionTimeMs int64   // v2-4
	Topics          []OffsetCommitTopic
	Tags            wire.TaggedFields
}

func (r *OffsetCommitRequest) Key() Key                    { return OffsetCommit }
func (r *OffsetCommitRequest) Versions() wire.VersionRange { return versions(0, 8) }
func (r *OffsetCommitRequest) FlexibleVersion() int16      { return 8 }
func (r *OffsetCommitRequest) NewResponse() Response       { return &OffsetCommitResponse{} }
func (r *OffsetCommitRequest) RoutingKey() string          { return r.GroupID }

func (r *OffsetCommitRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("generation_id", wire.Int32(&r.GenerationID)).Since(1),
		wire.F("member_id", wire.String(&r.MemberID)).Since(1),
		wire.F("group_instance_id", wire.NullableString(&r.GroupInstanceID)).Since(7),
		wire.F("retention_time_ms", wire.Int64(&r.RetentionTimeMs)).Since(2).Until(4),
		wire.F("topics", wire.Array(&r.Topics, func(t *OffsetCommitTopic) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type OffsetCommitTopic struct {
	Name       string
	Partitions []OffsetCommitPartition
	Tags       wire.TaggedFields
}

func (t *OffsetCommitTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *OffsetCommitPartition) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type OffsetCommitPartition struct {
	PartitionIndex       int32
	CommittedOffset      int64
	CommittedLeaderEpoch int32 // v6+
	CommitTimestamp      int64 // v1 only
	CommittedMetadata    *string
	Tags                 wire.TaggedFields
}

func (p *OffsetCommitPartition) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("committed_offset", wire.Int64(&p.CommittedOffset)),
		wire.F("committed_leader_epoch", wire.Int32(&p.CommittedLeaderEpoch)).Since(6),
		wire.F("commit_timestamp", wire.Int64(&p.CommitTimestamp)).Since(1).Until(1),
		wire.F("committed_metadata", wire.NullableString(&p.CommittedMetadata)),
		wire.Tagged(&p.Tags),
	}
}

type OffsetCommitResponse struct {
	ThrottleTimeMs int32 // v3+
	Topics         []OffsetCommitTopicResponse
	Tags           wire.TaggedFields
}

func (r *OffsetCommitResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(3),
		wire.F("topics", wire.Array(&r.Topics, func(t *OffsetCommitTopicResponse) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type OffsetCommitTopicResponse struct {
	Name       string
	Partitions []OffsetCommitPartitionResponse
	Tags       wire.TaggedFields
}

func (t *OffsetCommitTopicResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *OffsetCommitPartitionResponse) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type OffsetCommitPartitionResponse struct {
	PartitionIndex int32
	ErrorCode      ErrorCode
	Tags           wire.TaggedFields
}

func (p *OffsetCommitPartitionResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.Tagged(&p.Tags),
	}
}

// OffsetFetchRequest reads committed offsets. From version 2 a nil Topics list
// asks for every topic the group has committed.
type OffsetFetchRequest struct {
	GroupID       string
	Topics        []OffsetFetchTopic
	RequireStable bool // v7+
	Tags          wire.TaggedFields
}

func (r *OffsetFetchRequest) Key() Key                    { return OffsetFetch }
func (r *OffsetFetchRequest) Versions() wire.VersionRange { return versions(0, 7) }
func (r *OffsetFetchRequest) FlexibleVersion() int16      { return 6 }
func (r *OffsetFetchRequest) NewResponse() Response       { return &OffsetFetchResponse{} }
func (r *OffsetFetchRequest) RoutingKey() string          { return r.GroupID }

func (r *OffsetFetchRequest) Fields() []wire.Field {
	topic := func(t *OffsetFetchTopic) wire.Value { return wire.Struct(t) }
	return []wire.Field{
		wire.F("group_id", wire.String(&r.GroupID)),
		wire.F("topics", wire.Array(&r.Topics, topic)).Until(1),
		wire.F("topics", wire.NullableArray(&r.Topics, topic)).Since(2),
		wire.F("require_stable", wire.Bool(&r.RequireStable)).Since(7),
		wire.Tagged(&r.Tags),
	}
}

type OffsetFetchTopic struct {
	Name             string
	PartitionIndexes []int32
	Tags             wire.TaggedFields
}

func (t *OffsetFetchTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partition_indexes", wire.Array(&t.PartitionIndexes, wire.Int32)),
		wire.Tagged(&t.Tags),
	}
}

type OffsetFetchResponse struct {
	ThrottleTimeMs int32 // v3+
	Topics         []OffsetFetchTopicResponse
	ErrorCode      ErrorCode // v2+
	Tags           wire.TaggedFields
}

func (r *OffsetFetchResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(3),
		wire.F("topics", wire.Array(&r.Topics, func(t *OffsetFetchTopicResponse) wire.Value { return wire.Struct(t) })),
		wire.F("error_code", errorCode(&r.ErrorCode)).Since(2),
		wire.Tagged(&r.Tags),
	}
}

type OffsetFetchTopicResponse struct {
	Name       string
	Partitions []OffsetFetchPartitionResponse
	Tags       wire.TaggedFields
}

func (t *OffsetFetchTopicResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *OffsetFetchPartitionResponse) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type OffsetFetchPartitionResponse struct {
	PartitionIndex       int32
	CommittedOffset      int64
	CommittedLeaderEpoch int32 // v5+
	Metadata             *string
	ErrorCode            ErrorCode
	Tags                 wire.TaggedFields
}

func (p *OffsetFetchPartitionResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("committed_offset", wire.Int64(&p.CommittedOffset)),
		wire.F("committed_leader_epoch", wire.Int32(&p.CommittedLeaderEpoch)).Since(5),
		wire.F("metadata", wire.NullableString(&p.Metadata)),
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.Tagged(&p.Tags),
	}
}

// Special timestamps for ListOffsets.
const (
	LatestTimestamp   int64 = -1
	EarliestTimestamp int64 = -2
)

// ListOffsetsRequest resolves offsets by timestamp.
type ListOffsetsRequest struct {
	ReplicaID      int32
	IsolationLevel IsolationLevel // v2+
	Topics         []ListOffsetsTopic
	Tags           wire.TaggedFields
}

func (r *ListOffsetsRequest) Key() Key                    { return ListOffsets }
func (r *ListOffsetsRequest) Versions() wire.VersionRange { return versions(0, 6) }
func (r *ListOffsetsRequest) FlexibleVersion() int16      { return 6 }
func (r *ListOffsetsRequest) NewResponse() Response       { return &ListOffsetsResponse{} }

func (r *ListOffsetsRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("replica_id", wire.Int32(&r.ReplicaID)),
		wire.F("isolation_level", isolationLevel(&r.IsolationLevel)).Since(2),
		wire.F("topics", wire.Array(&r.Topics, func(t *ListOffsetsTopic) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type ListOffsetsTopic struct {
	Name       string
	Partitions []ListOffsetsPartition
	Tags       wire.TaggedFields
}

func (t *ListOffsetsTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *ListOffsetsPartition) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type ListOffsetsPartition struct {
	PartitionIndex     int32
	CurrentLeaderEpoch int32 // v4+
	Timestamp          int64
	MaxNumOffsets      int32 // v0 only
	Tags               wire.TaggedFields
}

func (p *ListOffsetsPartition) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("current_leader_epoch", wire.Int32(&p.CurrentLeaderEpoch)).Since(4),
		wire.F("timestamp", wire.Int64(&p.Timestamp)),
		wire.F("max_num_offsets", wire.Int32(&p.MaxNumOffsets)).Until(0),
		wire.Tagged(&p.Tags),
	}
}

type ListOffsetsResponse struct {
	ThrottleTimeMs int32 // v2+
	Topics         []ListOffsetsTopicResponse
	Tags           wire.TaggedFields
}

func (r *ListOffsetsResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(2),
		wire.F("topics", wire.Array(&r.Topics, func(t *ListOffsetsTopicResponse) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type ListOffsetsTopicResponse struct {
	Name       string
	Partitions []ListOffsetsPartitionResponse
	Tags       wire.TaggedFields
}

func (t *ListOffsetsTopicResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *ListOffsetsPartitionResponse) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type ListOffsetsPartitionResponse struct {
	PartitionIndex  int32
	ErrorCode       ErrorCode
	OldStyleOffsets []int64 // v0 only
	Timestamp       int64   // v1+
	Offset          int64   // v1+
	LeaderEpoch     int32   // v4+
	Tags            wire.TaggedFields
}

func (p *ListOffsetsPartitionResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.F("old_style_offsets", wire.Array(&p.OldStyleOffsets, wire.Int64)).Until(0),
		wire.F("timestamp", wire.Int64(&p.Timestamp)).Since(1),
		wire.F("offset", wire.Int64(&p.Offset)).Since(1),
		wire.F("leader_epoch", wire.Int32(&p.LeaderEpoch)).Since(4),
		wire.Tagged(&p.Tags),
	}
}
