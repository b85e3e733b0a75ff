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
	"errors"
	"fmt"
)

var (
	// ErrCyclicGraph indicates the reachable portion of the graph contains a
	// cycle. Full execution and materialization require a true DAG; cyclic
	// graphs pass validation with a warning but cannot be executed.
	ErrCyclicGraph = errors.New("graph contains a cycle")
	// ErrHandlerNotFound indicates a node references an unregistered handler.
	ErrHandlerNotFound = errors.New("handler not found")
	// ErrExecutionCanceled indicates the run ended due to cancellation
	// rather than natural completion or error.
	ErrExecutionCanceled = errors.New("execution canceled")
	// ErrNoArtifactRegistry indicates a materialization was requested on an
	// executor configured without an artifact registry.
	ErrNoArtifactRegistry = errors.New("no artifact registry configured")
	// ErrNoProducer indicates no node in the graph produces the requested
	// artifact.
	ErrNoProducer = errors.New("no producer for artifact")
	// ErrArtifactNotProduced indicates the materialization ran but the
	// target artifact was not registered, e.g. because conditional routing
	// skipped its producer.
	ErrArtifactNotProduced = errors.New("artifact not produced")
	// ErrMixedPartitions indicates a combined materialization request whose
	// targets address different partitions. One run executes under a single
	// partition.
	ErrMixedPartitions = errors.New("targets address different partitions")
)

// NodeError tags a handler failure with the originating node id.
type NodeError struct {
	// NodeID is the node whose handler failed.
	NodeID string
	// Err is the underlying handler error.
	Err error
}

// Error returns the formatted error.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying handler error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
