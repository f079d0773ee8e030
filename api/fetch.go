package api

import "github.com/pior/kwire/wire"

// FetchRequest reads record batches from partitions.
//
// SessionID 0 with SessionEpoch -1 asks for a full fetch without a session.
type FetchRequest struct {
	ReplicaID       int32
	MaxWaitMs       int32
	MinBytes        int32
	MaxBytes        wire.Versioned[int32] // v3+
	IsolationLevel  IsolationLevel        // v4+
	SessionID       int32                 // v7+
	SessionEpoch    int32                 // v7+
	Topics          []FetchTopic
	ForgottenTopics []FetchForgottenTopic // v7+
	RackID          string                // v11+
	Tags            wire.TaggedFields
}

func (r *FetchRequest) Key() Key                    { return Fetch }
func (r *FetchRequest) Versions() wire.VersionRange { return versions(0, 11) }
func (r *FetchRequest) FlexibleVersion() int16      { return 12 }
func (r *FetchRequest) NewResponse() Response       { return &FetchResponse{} }

func (r *FetchRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("replica_id", wire.Int32(&r.ReplicaID)),
		wire.F("max_wait_ms", wire.Int32(&r.MaxWaitMs)),
		wire.F("min_bytes", wire.Int32(&r.MinBytes)),
		wire.F("max_bytes", wire.Opt(&r.MaxBytes, wire.Int32)).Since(3),
		wire.F("isolation_level", isolationLevel(&r.IsolationLevel)).Since(4),
		wire.F("session_id", wire.Int32(&r.SessionID)).Since(7),
		wire.F("session_epoch", wire.Int32(&r.SessionEpoch)).Since(7),
		wire.F("topics", wire.Array(&r.Topics, func(t *FetchTopic) wire.Value { return wire.Struct(t) })),
		wire.F("forgotten_topics_data", wire.Array(&r.ForgottenTopics, func(t *FetchForgottenTopic) wire.Value { return wire.Struct(t) })).Since(7),
		wire.F("rack_id", wire.String(&r.RackID)).Since(11),
		wire.Tagged(&r.Tags),
	}
}

type FetchTopic struct {
	Topic      string
	Partitions []FetchPartition
	Tags       wire.TaggedFields
}

func (t *FetchTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("topic", wire.String(&t.Topic)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *FetchPartition) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type FetchPartition struct {
	Partition          int32
	CurrentLeaderEpoch int32 // v9+
	FetchOffset        int64
	LogStartOffset     int64 // v5+
	PartitionMaxBytes  int32
	Tags               wire.TaggedFields
}

func (p *FetchPartition) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition", wire.Int32(&p.Partition)),
		wire.F("current_leader_epoch", wire.Int32(&p.CurrentLeaderEpoch)).Since(9),
		wire.F("fetch_offset", wire.Int64(&p.FetchOffset)),
		wire.F("log_start_offset", wire.Int64(&p.LogStartOffset)).Since(5),
		wire.F("partition_max_bytes", wire.Int32(&p.PartitionMaxBytes)),
		wire.Tagged(&p.Tags),
	}
}

// FetchForgottenTopic removes partitions from an incremental fetch session.
type FetchForgottenTopic struct {
	Topic      string
	Partitions []int32
	Tags       wire.TaggedFields
}

func (t *FetchForgottenTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("topic", wire.String(&t.Topic)),
		wire.F("partitions", wire.Array(&t.Partitions, wire.Int32)),
		wire.Tagged(&t.Tags),
	}
}

type FetchResponse struct {
	ThrottleTimeMs int32     // v1+
	ErrorCode      ErrorCode // v7+
	SessionID      int32     // v7+
	Responses      []FetchTopicResponse
	Tags           wire.TaggedFields
}

func (r *FetchResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.F("error_code", errorCode(&r.ErrorCode)).Since(7),
		wire.F("session_id", wire.Int32(&r.SessionID)).Since(7),
		wire.F("responses", wire.Array(&r.Responses, func(t *FetchTopicResponse) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type FetchTopicResponse struct {
	Topic      string
	Partitions []FetchPartitionResponse
	Tags       wire.TaggedFields
}

func (t *FetchTopicResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("topic", wire.String(&t.Topic)),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *FetchPartitionResponse) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

// FetchPartitionResponse carries the fetched record set of one partition.
// Records is nil when the broker sent a null set.
type FetchPartitionResponse struct {
	PartitionIndex       int32
	ErrorCode            ErrorCode
	HighWatermark        int64
	LastStableOffset     int64                     // v4+
	LogStartOffset       int64                     // v5+
	AbortedTransactions  []FetchAbortedTransaction // v4+, nullable
	PreferredReadReplica int32                     // v11+
	Records              []byte
	Tags                 wire.TaggedFields
}

func (p *FetchPartitionResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.F("high_watermark", wire.Int64(&p.HighWatermark)),
		wire.F("last_stable_offset", wire.Int64(&p.LastStableOffset)).Since(4),
		wire.F("log_start_offset", wire.Int64(&p.LogStartOffset)).Since(5),
		wire.F("aborted_transactions", wire.NullableArray(&p.AbortedTransactions, func(a *FetchAbortedTransaction) wire.Value { return wire.Struct(a) })).Since(4),
		wire.F("preferred_read_replica", wire.Int32(&p.PreferredReadReplica)).Since(11),
		wire.F("records", wire.NullableBytes(&p.Records)),
		wire.Tagged(&p.Tags),
	}
}

type FetchAbortedTransaction struct {
	ProducerID  int64
	FirstOffset int64
	Tags        wire.TaggedFields
}

func (a *FetchAbortedTransaction) Fields() []wire.Field {
	return []wire.Field{
		wire.F("producer_id", wire.Int64(&a.ProducerID)),
		wire.F("first_offset", wire.Int64(&a.FirstOffset)),
		wire.Tagged(&a.Tags),
	}
}
