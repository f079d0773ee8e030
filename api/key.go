package api

import (
	"fmt"

	"github.com/pior/kwire/wire"
)

// Key identifies a message type on the wire.
type Key int16

const (
	Produce                     Key = 0
	Fetch                       Key = 1
	ListOffsets                 Key = 2
	Metadata                    Key = 3
	LeaderAndIsr                Key = 4
	StopReplica                 Key = 5
	UpdateMetadata              Key = 6
	ControlledShutdown          Key = 7
	OffsetCommit                Key = 8
	OffsetFetch                 Key = 9
	FindCoordinator             Key = 10
	JoinGroup                   Key = 11
	Heartbeat                   Key = 12
	LeaveGroup                  Key = 13
	SyncGroup                   Key = 14
	DescribeGroups              Key = 15
	ListGroups                  Key = 16
	SaslHandshake               Key = 17
	APIVersions                 Key = 18
	CreateTopics                Key = 19
	DeleteTopics                Key = 20
	DeleteRecords               Key = 21
	InitProducerID              Key = 22
	OffsetForLeaderEpoch        Key = 23
	AddPartitionsToTxn          Key = 24
	AddOffsetsToTxn             Key = 25
	EndTxn                      Key = 26
	WriteTxnMarkers             Key = 27
	TxnOffsetCommit             Key = 28
	DescribeAcls                Key = 29
	CreateAcls                  Key = 30
	DeleteAcls                  Key = 31
	DescribeConfigs             Key = 32
	AlterConfigs                Key = 33
	AlterReplicaLogDirs         Key = 34
	DescribeLogDirs             Key = 35
	SaslAuthenticate            Key = 36
	CreatePartitions            Key = 37
	CreateDelegationToken       Key = 38
	RenewDelegationToken        Key = 39
	ExpireDelegationToken       Key = 40
	DescribeDelegationToken     Key = 41
	DeleteGroups                Key = 42
	ElectLeaders                Key = 43
	IncrementalAlterConfigs     Key = 44
	AlterPartitionReassignments Key = 45
	ListPartitionReassignments  Key = 46
	OffsetDelete                Key = 47
	DescribeClientQuotas        Key = 48
	AlterClientQuotas           Key = 49
)

var keyNames = [...]string{
	Produce:                     "Produce",
	Fetch:                       "Fetch",
	ListOffsets:                 "ListOffsets",
	Metadata:                    "Metadata",
	LeaderAndIsr:                "LeaderAndIsr",
	StopReplica:                 "StopReplica",
	UpdateMetadata:              "UpdateMetadata",
	ControlledShutdown:          "ControlledShutdown",
	OffsetCommit:                "OffsetCommit",
	OffsetFetch:                 "OffsetFetch",
	FindCoordinator:             "FindCoordinator",
	JoinGroup:                   "JoinGroup",
	Heartbeat:                   "Heartbeat",
	LeaveGroup:                  "LeaveGroup",
	SyncGroup:                   "SyncGroup",
	DescribeGroups:              "DescribeGroups",
	ListGroups:                  "ListGroups",
	SaslHandshake:               "SaslHandshake",
	APIVersions:                 "ApiVersions",
	CreateTopics:                "CreateTopics",
	DeleteTopics:                "DeleteTopics",
	DeleteRecords:               "DeleteRecords",
	InitProducerID:              "InitProducerId",
	OffsetForLeaderEpoch:        "OffsetForLeaderEpoch",
	AddPartitionsToTxn:          "AddPartitionsToTxn",
	AddOffsetsToTxn:             "AddOffsetsToTxn",
	EndTxn:                      "EndTxn",
	WriteTxnMarkers:             "WriteTxnMarkers",
	TxnOffsetCommit:             "TxnOffsetCommit",
	DescribeAcls:                "DescribeAcls",
	CreateAcls:                  "CreateAcls",
	DeleteAcls:                  "DeleteAcls",
	DescribeConfigs:             "DescribeConfigs",
	AlterConfigs:                "AlterConfigs",
	AlterReplicaLogDirs:         "AlterReplicaLogDirs",
	DescribeLogDirs:             "DescribeLogDirs",
	SaslAuthenticate:            "SaslAuthenticate",
	CreatePartitions:            "CreatePartitions",
	CreateDelegationToken:       "CreateDelegationToken",
	RenewDelegationToken:        "RenewDelegationToken",
	ExpireDelegationToken:       "ExpireDelegationToken",
	DescribeDelegationToken:     "DescribeDelegationToken",
	DeleteGroups:                "DeleteGroups",
	ElectLeaders:                "ElectLeaders",
	IncrementalAlterConfigs:     "IncrementalAlterConfigs",
	AlterPartitionReassignments: "AlterPartitionReassignments",
	ListPartitionReassignments:  "ListPartitionReassignments",
	OffsetDelete:                "OffsetDelete",
	DescribeClientQuotas:        "DescribeClientQuotas",
	AlterClientQuotas:           "AlterClientQuotas",
}

// ParseKey maps a raw api key to a known Key. Unknown values fail with
// wire.ErrInvalidEncoding.
func ParseKey(v int16) (Key, error) {
	if v < 0 || int(v) >= len(keyNames) {
		return 0, fmt.Errorf("api key %d: %w", v, wire.ErrInvalidEncoding)
	}
	return Key(v), nil
}

func (k Key) String() string {
	if k >= 0 && int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", int16(k))
}
