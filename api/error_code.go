package api

import "fmt"

// ErrorCode is the int16 error carried in response bodies. The zero value means
// success.
type ErrorCode int16

const (
	UnknownServerError                 ErrorCode = -1
	None                               ErrorCode = 0
	OffsetOutOfRange                   ErrorCode = 1
	CorruptMessage                     ErrorCode = 2
	UnknownTopicOrPartition            ErrorCode = 3
	InvalidFetchSize                   ErrorCode = 4
	LeaderNotAvailable                 ErrorCode = 5
	NotLeaderOrFollower                ErrorCode = 6
	RequestTimedOut                    ErrorCode = 7
	BrokerNotAvailable                 ErrorCode = 8
	ReplicaNotAvailable                ErrorCode = 9
	MessageTooLarge                    ErrorCode = 10
	StaleControllerEpoch               ErrorCode = 11
	OffsetMetadataTooLarge             ErrorCode = 12
	NetworkException                   ErrorCode = 13
	CoordinatorLoadInProgress          ErrorCode = 14
	CoordinatorNotAvailable            ErrorCode = 15
	NotCoordinator                     ErrorCode = 16
	InvalidTopicException              ErrorCode = 17
	RecordListTooLarge                 ErrorCode = 18
	NotEnoughReplicas                  ErrorCode = 19
	NotEnoughReplicasAfterAppend       ErrorCode = 20
	InvalidRequiredAcks                ErrorCode = 21
	IllegalGeneration                  ErrorCode = 22
	InconsistentGroupProtocol          ErrorCode = 23
	InvalidGroupID                     ErrorCode = 24
	UnknownMemberID                    ErrorCode = 25
	InvalidSessionTimeout              ErrorCode = 26
	RebalanceInProgress                ErrorCode = 27
	InvalidCommitOffsetSize            ErrorCode = 28
	TopicAuthorizationFailed           ErrorCode = 29
	GroupAuthorizationFailed           ErrorCode = 30
	ClusterAuthorizationFailed         ErrorCode = 31
	InvalidTimestamp                   ErrorCode = 32
	UnsupportedSaslMechanism           ErrorCode = 33
	IllegalSaslState                   ErrorCode = 34
	UnsupportedVersion                 ErrorCode = 35
	TopicAlreadyExists                 ErrorCode = 36
	InvalidPartitions                  ErrorCode = 37
	InvalidReplicationFactor           ErrorCode = 38
	InvalidReplicaAssignment           ErrorCode = 39
	InvalidConfig                      ErrorCode = 40
	NotController                      ErrorCode = 41
	InvalidRequest                     ErrorCode = 42
	UnsupportedForMessageFormat        ErrorCode = 43
	PolicyViolation                    ErrorCode = 44
	GroupIDNotFound                    ErrorCode = 69
	FencedLeaderEpoch                  ErrorCode = 74
	UnknownLeaderEpoch                 ErrorCode = 75
	MemberIDRequired                   ErrorCode = 79
	PreferredLeaderNotAvailable        ErrorCode = 80
	GroupMaxSizeReached                ErrorCode = 81
	FencedInstanceID                   ErrorCode = 82
	InvalidRecord                      ErrorCode = 87
	UnstableOffsetCommit               ErrorCode = 88
	UnknownTopicID                     ErrorCode = 100
	InconsistentTopicID                ErrorCode = 103
)

var errorNames = map[ErrorCode]string{
	UnknownServerError:           "UNKNOWN_SERVER_ERROR",
	None:                         "NONE",
	OffsetOutOfRange:             "OFFSET_OUT_OF_RANGE",
	CorruptMessage:               "CORRUPT_MESSAGE",
	UnknownTopicOrPartition:      "UNKNOWN_TOPIC_OR_PARTITION",
	InvalidFetchSize:             "INVALID_FETCH_SIZE",
	LeaderNotAvailable:           "LEADER_NOT_AVAILABLE",
	NotLeaderOrFollower:          "NOT_LEADER_OR_FOLLOWER",
	RequestTimedOut:              "REQUEST_TIMED_OUT",
	BrokerNotAvailable:           "BROKER_NOT_AVAILABLE",
	ReplicaNotAvailable:          "REPLICA_NOT_AVAILABLE",
	MessageTooLarge:              "MESSAGE_TOO_LARGE",
	StaleControllerEpoch:         "STALE_CONTROLLER_EPOCH",
	OffsetMetadataTooLarge:       "OFFSET_METADATA_TOO_LARGE",
	NetworkException:             "NETWORK_EXCEPTION",
	CoordinatorLoadInProgress:    "COORDINATOR_LOAD_IN_PROGRESS",
	CoordinatorNotAvailable:      "COORDINATOR_NOT_AVAILABLE",
	NotCoordinator:               "NOT_COORDINATOR",
	InvalidTopicException:        "INVALID_TOPIC_EXCEPTION",
	RecordListTooLarge:           "RECORD_LIST_TOO_LARGE",
	NotEnoughReplicas:            "NOT_ENOUGH_REPLICAS",
	NotEnoughReplicasAfterAppend: "NOT_ENOUGH_REPLICAS_AFTER_APPEND",
	InvalidRequiredAcks:          "INVALID_REQUIRED_ACKS",
	IllegalGeneration:            "ILLEGAL_GENERATION",
	InconsistentGroupProtocol:    "INCONSISTENT_GROUP_PROTOCOL",
	InvalidGroupID:               "INVALID_GROUP_ID",
	UnknownMemberID:              "UNKNOWN_MEMBER_ID",
	InvalidSessionTimeout:        "INVALID_SESSION_TIMEOUT",
	RebalanceInProgress:          "REBALANCE_IN_PROGRESS",
	InvalidCommitOffsetSize:      "INVALID_COMMIT_OFFSET_SIZE",
	TopicAuthorizationFailed:     "TOPIC_AUTHORIZATION_FAILED",
	GroupAuthorizationFailed:     "GROUP_AUTHORIZATION_FAILED",
	ClusterAuthorizationFailed:   "CLUSTER_AUTHORIZATION_FAILED",
	InvalidTimestamp:             "INVALID_TIMESTAMP",
	UnsupportedSaslMechanism:     "UNSUPPORTED_SASL_MECHANISM",
	IllegalSaslState:             "ILLEGAL_SASL_STATE",
	UnsupportedVersion:           "UNSUPPORTED_VERSION",
	TopicAlreadyExists:           "TOPIC_ALREADY_EXISTS",
	InvalidPartitions:            "INVALID_PARTITIONS",
	InvalidReplicationFactor:     "INVALID_REPLICATION_FACTOR",
	InvalidReplicaAssignment:     "INVALID_REPLICA_ASSIGNMENT",
	InvalidConfig:                "INVALID_CONFIG",
	NotController:                "NOT_CONTROLLER",
	InvalidRequest:               "INVALID_REQUEST",
	UnsupportedForMessageFormat:  "UNSUPPORTED_FOR_MESSAGE_FORMAT",
	PolicyViolation:              "POLICY_VIOLATION",
	GroupIDNotFound:              "GROUP_ID_NOT_FOUND",
	FencedLeaderEpoch:            "FENCED_LEADER_EPOCH",
	UnknownLeaderEpoch:           "UNKNOWN_LEADER_EPOCH",
	MemberIDRequired:             "MEMBER_ID_REQUIRED",
	PreferredLeaderNotAvailable:  "PREFERRED_LEADER_NOT_AVAILABLE",
	GroupMaxSizeReached:          "GROUP_MAX_SIZE_REACHED",
	FencedInstanceID:             "FENCED_INSTANCE_ID",
	InvalidRecord:                "INVALID_RECORD",
	UnstableOffsetCommit:         "UNSTABLE_OFFSET_COMMIT",
	UnknownTopicID:               "UNKNOWN_TOPIC_ID",
	InconsistentTopicID:          "INCONSISTENT_TOPIC_ID",
}

var retriable = map[ErrorCode]bool{
	CorruptMessage:               true,
	UnknownTopicOrPartition:      true,
	LeaderNotAvailable:           true,
	NotLeaderOrFollower:          true,
	RequestTimedOut:              true,
	ReplicaNotAvailable:          true,
	NetworkException:             true,
	CoordinatorLoadInProgress:    true,
	CoordinatorNotAvailable:      true,
	NotCoordinator:               true,
	NotEnoughReplicas:            true,
	NotEnoughReplicasAfterAppend: true,
	NotController:                true,
	FencedLeaderEpoch:            true,
	UnknownLeaderEpoch:           true,
	PreferredLeaderNotAvailable:  true,
	UnstableOffsetCommit:         true,
	UnknownTopicID:               true,
	InconsistentTopicID:          true,
}

// Error implements error so a code can be returned directly; use Err to turn
// None into a nil error.
func (c ErrorCode) Error() string {
	if name, ok := errorNames[c]; ok {
		return fmt.Sprintf("kafka error %d: %s", int16(c), name)
	}
	return fmt.Sprintf("kafka error %d", int16(c))
}

func (c ErrorCode) String() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int16(c))
}

// Err returns nil for None and the code itself otherwise.
func (c ErrorCode) Err() error {
	if c == None {
		return nil
	}
	return c
}

// Retriable reports whether the broker marks the condition as transient.
func (c ErrorCode) Retriable() bool {
	return retriable[c]
}

// ShouldCloseConnection returns false: a broker error code is a well formed reply.
func (c ErrorCode) ShouldCloseConnection() bool {
	return false
}
