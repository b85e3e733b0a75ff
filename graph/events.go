//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"time"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// ExecutionEventType is the type of a graph execution lifecycle event.
type ExecutionEventType string

// Execution event types.
const (
	// EventNodeStart is emitted when a node begins executing.
	EventNodeStart ExecutionEventType = "graph.node.start"
	// EventNodeComplete is emitted when a node completes successfully.
	EventNodeComplete ExecutionEventType = "graph.node.complete"
	// EventNodeSkipped is emitted when a node is skipped because no inbound
	// edge was taken.
	EventNodeSkipped ExecutionEventType = "graph.node.skipped"
	// EventNodeError is emitted when a node handler fails.
	EventNodeError ExecutionEventType = "graph.node.error"
	// EventGraphComplete is emitted when the whole execution completes.
	EventGraphComplete ExecutionEventType = "graph.complete"
	// EventGraphError is emitted when the execution ends with a failure.
	EventGraphError ExecutionEventType = "graph.error"
	// EventGraphCanceled is emitted when the execution ends due to
	// cancellation rather than completion or error.
	EventGraphCanceled ExecutionEventType = "graph.canceled"
)

// ExecutionEvent is one entry of the execution progress stream.
type ExecutionEvent struct {
	// Type is the event type.
	Type ExecutionEventType
	// ExecutionID is the execution the event belongs to.
	ExecutionID string
	// NodeID is the node concerned, for node-level events.
	NodeID string
	// CacheHit reports whether a completed node reused a cached result.
	CacheHit bool
	// Err carries the failure description for error events.
	Err string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

func newExecutionEvent(typ ExecutionEventType, executionID, nodeID string) *ExecutionEvent {
	return &ExecutionEvent{
		Type:        typ,
		ExecutionID: executionID,
		NodeID:      nodeID,
		Timestamp:   time.Now().UTC(),
	}
}

// BackfillEventType is the type of a backfill lifecycle event.
type BackfillEventType string

// Backfill event types.
const (
	// BackfillStarted is emitted once before any partition is scheduled.
	BackfillStarted BackfillEventType = "backfill.started"
	// BackfillPartitionCompleted is emitted per partition with its outcome.
	BackfillPartitionCompleted BackfillEventType = "backfill.partition.completed"
	// BackfillCompleted is emitted once after every partition resolved.
	BackfillCompleted BackfillEventType = "backfill.completed"
)

// BackfillEvent is one entry of the backfill progress stream. Backfills are
// long-running, so progress is streamed incrementally instead of buffered
// into a final value; partition failures are independently observable and
// never abort sibling partitions.
type BackfillEvent struct {
	// Type is the event type.
	Type BackfillEventType
	// Target is the artifact being backfilled.
	Target artifact.Key
	// TotalPartitions is the number of partitions selected, set on the
	// started event.
	TotalPartitions int
	// Partition identifies the partition for per-partition events.
	Partition artifact.PartitionKey
	// Success reports the partition outcome for per-partition events.
	Success bool
	// Version is the artifact version produced for a successful partition.
	Version *artifact.Version
	// Err carries the failure description for a failed partition.
	Err string
	// SucceededPartitions counts successful partitions, set on completion.
	SucceededPartitions int
	// FailedPartitions counts failed partitions, set on completion.
	FailedPartitions int
	// CanceledPartitions counts partitions never attempted because the
	// backfill was canceled, set on completion.
	CanceledPartitions int
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}
