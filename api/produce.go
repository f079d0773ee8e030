package api

import "github.com/pior/kwire/wire"

// ProduceRequest appends record batches to partitions. Records holds an encoded
// record set and is passed through untouched.
//
// With Acks 0 the broker sends no response: the call completes once the request
// is written.
type ProduceRequest struct {
	TransactionalID *string // v3+
	Acks            int16
	TimeoutMs       int32
	Topics          []ProduceTopic
	Tags            wire.TaggedFields
}

func (r *ProduceRequest) Key() Key                    { return Produce }
func (r *ProduceRequest) Versions() wire.VersionRange { return versions(0, 8) }
func (r *ProduceRequest) FlexibleVersion() int16      { return 9 }
func (r *ProduceRequest) NewResponse() Response       { return &ProduceResponse{} }

// ExpectsResponse is false for fire and forget produces.
func (r *ProduceRequest) ExpectsResponse() bool { return r.Acks != 0 }

func (r *ProduceRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("transactional_id", wire.NullableString(&r.TransactionalID)).Since(3),
		wire.F("acks", wire.Int16(&r.Acks)),
		wire.F("timeout_ms", wire.Int32(&r.TimeoutMs)),
		wire.F("topic_data", wire.Array(&r.Topics, func(t *ProduceTopic) wire.Value { return wire.Struct(t) })),
		wire.Tagged(&r.Tags),
	}
}

type ProduceTopic struct {
	Name       string
	Partitions []ProducePartition
	Tags       wire.TaggedFields
}

func (t *ProduceTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partition_data", wire.Array(&t.Partitions, func(p *ProducePartition) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

type ProducePartition struct {
	Index   int32
	Records []byte
	Tags    wire.TaggedFields
}

func (p *ProducePartition) Fields() []wire.Field {
	return []wire.Field{
		wire.F("index", wire.Int32(&p.Index)),
		wire.F("records", wire.NullableBytes(&p.Records)),
		wire.Tagged(&p.Tags),
	}
}

type ProduceResponse struct {
	Responses      []ProduceTopicResponse
	ThrottleTimeMs int32 // v1+
	Tags           wire.TaggedFields
}

func (r *ProduceResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("responses", wire.Array(&r.Responses, func(t *ProduceTopicResponse) wire.Value { return wire.Struct(t) })),
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(1),
		wire.Tagged(&r.Tags),
	}
}

type ProduceTopicResponse struct {
	Name       string
	Partitions []ProducePartitionResponse
	Tags       wire.TaggedFields
}

func (t *ProduceTopicResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("name", wire.String(&t.Name)),
		wire.F("partition_responses", wire.Array(&t.Partitions, func(p *ProducePartitionResponse) wire.Value { return wire.Struct(p) })),
		wire.Tagged(&t.Tags),
	}
}

// ProducePartitionResponse reports where a batch landed. LogAppendTimeMs is -1
// unless the topic uses log append time.
type ProducePartitionResponse struct {
	Index           int32
	ErrorCode       ErrorCode
	BaseOffset      int64
	LogAppendTimeMs int64                // v2+
	LogStartOffset  int64                // v5+
	RecordErrors    []ProduceRecordError // v8+
	ErrorMessage    *string              // v8+
	Tags            wire.TaggedFields
}

func (p *ProducePartitionResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("index", wire.Int32(&p.Index)),
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.F("base_offset", wire.Int64(&p.BaseOffset)),
		wire.F("log_append_time_ms", wire.Int64(&p.LogAppendTimeMs)).Since(2),
		wire.F("log_start_offset", wire.Int64(&p.LogStartOffset)).Since(5),
		wire.F("record_errors", wire.Array(&p.RecordErrors, func(e *ProduceRecordError) wire.Value { return wire.Struct(e) })).Since(8),
		wire.F("error_message", wire.NullableString(&p.ErrorMessage)).Since(8),
		wire.Tagged(&p.Tags),
	}
}

// ProduceRecordError points at the record that failed a batch.
type ProduceRecordError struct {
	BatchIndex             int32
	BatchIndexErrorMessage *string
	Tags                   wire.TaggedFields
}

func (e *ProduceRecordError) Fields() []wire.Field {
	return []wire.Field{
		wire.F("batch_index", wire.Int32(&e.BatchIndex)),
		wire.F("batch_index_error_message", wire.NullableString(&e.BatchIndexErrorMessage)),
		wire.Tagged(&e.Tags),
	}
}
