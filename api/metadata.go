package api

import (
	"github.com/google/uuid"

	"github.com/pior/kwire/wire"
)

// MetadataRequest asks for brokers and topic layout.
//
// At version 0 an empty Topics list means all topics. From version 1 a nil list
// means all topics and an empty one means none.
type MetadataRequest struct {
	Topics                             []MetadataRequestTopic
	AllowAutoTopicCreation             bool // v4+
	IncludeClusterAuthorizedOperations bool // v8-10
	IncludeTopicAuthorizedOperations   bool // v8+
	Tags                               wire.TaggedFields
}

func (r *MetadataRequest) Key() Key                    { return Metadata }
func (r *MetadataRequest) Versions() wire.VersionRange { return versions(0, 12) }
func (r *MetadataRequest) FlexibleVersion() int16      { return 9 }
func (r *MetadataRequest) NewResponse() Response       { return &MetadataResponse{} }

func (r *MetadataRequest) Fields() []wire.Field {
	topic := func(t *MetadataRequestTopic) wire.Value { return wire.Struct(t) }
	return []wire.Field{
		wire.F("topics", wire.Array(&r.Topics, topic)).Until(0),
		wire.F("topics", wire.NullableArray(&r.Topics, topic)).Since(1),
		wire.F("allow_auto_topic_creation", wire.Bool(&r.AllowAutoTopicCreation)).Since(4),
		wire.F("include_cluster_authorized_operations", wire.Bool(&r.IncludeClusterAuthorizedOperations)).Since(8).Until(10),
		wire.F("include_topic_authorized_operations", wire.Bool(&r.IncludeTopicAuthorizedOperations)).Since(8),
		wire.Tagged(&r.Tags),
	}
}

// MetadataRequestTopic names a topic. Name may be nil from version 10, when
// the topic is requested by id.
type MetadataRequestTopic struct {
	TopicID uuid.UUID // v10+
	Name    *string
	Tags    wire.TaggedFields
}

func (t *MetadataRequestTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("topic_id", wire.UUID(&t.TopicID)).Since(10),
		wire.F("name", wire.StringPtr(&t.Name)).Until(9),
		wire.F("name", wire.NullableString(&t.Name)).Since(10),
		wire.Tagged(&t.Tags),
	}
}

type MetadataResponse struct {
	ThrottleTimeMs              int32 // v3+
	Brokers                     []MetadataBroker
	ClusterID                   *string // v2+
	ControllerID                int32   // v1+
	Topics                      []MetadataTopic
	ClusterAuthorizedOperations int32 // v8-10
	Tags                        wire.TaggedFields
}

func (r *MetadataResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("throttle_time_ms", wire.Int32(&r.ThrottleTimeMs)).Since(3),
		wire.F("brokers", wire.Array(&r.Brokers, func(b *MetadataBroker) wire.Value { return wire.Struct(b) })),
		wire.F("cluster_id", wire.NullableString(&r.ClusterID)).Since(2),
		wire.F("controller_id", wire.Int32(&r.ControllerID)).Since(1),
		wire.F("topics", wire.Array(&r.Topics, func(t *MetadataTopic) wire.Value { return wire.Struct(t) })),
		wire.F("cluster_authorized_operations", wire.Int32(&r.ClusterAuthorizedOperations)).Since(8).Until(10),
		wire.Tagged(&r.Tags),
	}
}

// Broker returns the broker with the given node id.
func (r *MetadataResponse) Broker(nodeID int32) (MetadataBroker, bool) {
	for _, b := range r.Brokers {
		if b.NodeID == nodeID {
			return b, true
		}
	}
	return MetadataBroker{}, false
}

type MetadataBroker struct {
	NodeID int32
	Host   string
	Port   int32
	Rack   *string // v1+
	Tags   wire.TaggedFields
}

func (b *MetadataBroker) Fields() []wire.Field {
	return []wire.Field{
		wire.F("node_id", wire.Int32(&b.NodeID)),
		wire.F("host", wire.String(&b.Host)),
		wire.F("port", wire.Int32(&b.Port)),
		wire.F("rack", wire.NullableString(&b.Rack)).Since(1),
		wire.Tagged(&b.Tags),
	}
}

// MetadataTopic describes one topic. Name is only null from version 12, when the
// topic was requested by id.
type MetadataTopic struct {
	ErrorCode                 ErrorCode
	Name                      *string
	TopicID                   uuid.UUID // v10+
	IsInternal                bool      // v1+
	Partitions                []MetadataPartition
	TopicAuthorizedOperations int32 // v8+
	Tags                      wire.TaggedFields
}

func (t *MetadataTopic) Fields() []wire.Field {
	return []wire.Field{
		wire.F("error_code", errorCode(&t.ErrorCode)),
		wire.F("name", wire.StringPtr(&t.Name)).Until(11),
		wire.F("name", wire.NullableString(&t.Name)).Since(12),
		wire.F("topic_id", wire.UUID(&t.TopicID)).Since(10),
		wire.F("is_internal", wire.Bool(&t.IsInternal)).Since(1),
		wire.F("partitions", wire.Array(&t.Partitions, func(p *MetadataPartition) wire.Value { return wire.Struct(p) })),
		wire.F("topic_authorized_operations", wire.Int32(&t.TopicAuthorizedOperations)).Since(8),
		wire.Tagged(&t.Tags),
	}
}

type MetadataPartition struct {
	ErrorCode       ErrorCode
	PartitionIndex  int32
	LeaderID        int32
	LeaderEpoch     int32 // v7+
	ReplicaNodes    []int32
	IsrNodes        []int32
	OfflineReplicas []int32 // v5+
	Tags            wire.TaggedFields
}

func (p *MetadataPartition) Fields() []wire.Field {
	return []wire.Field{
		wire.F("error_code", errorCode(&p.ErrorCode)),
		wire.F("partition_index", wire.Int32(&p.PartitionIndex)),
		wire.F("leader_id", wire.Int32(&p.LeaderID)),
		wire.F("leader_epoch", wire.Int32(&p.LeaderEpoch)).Since(7),
		wire.F("replica_nodes", wire.Array(&p.ReplicaNodes, wire.Int32)),
		wire.F("isr_nodes", wire.Array(&p.IsrNodes, wire.Int32)),
		wire.F("offline_replicas", wire.Array(&p.OfflineReplicas, wire.Int32)).Since(5),
		wire.Tagged(&p.Tags),
	}
}
