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
	"context"
	"time"

	"github.com/google/uuid"
)

// NodeCompletion is one entry of the durable execution log: node X completed
// with result Y under fingerprint Z. Resume replays these entries to
// reconstruct context before scheduling continues.
type NodeCompletion struct {
	// NodeID is the completed node.
	NodeID string `json:"node_id"`
	// Fingerprint is the fingerprint the node executed under.
	Fingerprint Fingerprint `json:"fingerprint"`
	// Payload is the serialized node result.
	Payload []byte `json:"payload,omitempty"`
	// CacheHit records whether the result came from the cache.
	CacheHit bool `json:"cache_hit,omitempty"`
	// Timestamp is when the node completed.
	Timestamp time.Time `json:"timestamp"`
}

// PendingWrite records a side effect of a completed node that has not been
// committed yet, such as an artifact registration in flight when the process
// was interrupted.
type PendingWrite struct {
	// NodeID is the node whose side effect is pending.
	NodeID string `json:"node_id"`
	// ArtifactKey is the canonical key of the artifact being registered.
	ArtifactKey string `json:"artifact_key"`
	// Fingerprint is the fingerprint of the producing execution.
	Fingerprint Fingerprint `json:"fingerprint"`
}

// Manifest is the persisted record of one execution's progress, keyed by
// execution id. It is an append-only log of node completions plus any
// pending writes, enabling resume after interruption at node granularity.
type Manifest struct {
	// ID is the unique identifier of the manifest.
	ID string `json:"id"`
	// ExecutionID is the execution this manifest belongs to.
	ExecutionID string `json:"execution_id"`
	// GraphID is the graph the execution runs.
	GraphID string `json:"graph_id"`
	// Records is the ordered log of node completions.
	Records []NodeCompletion `json:"records"`
	// PendingWrites are uncommitted side effects of completed handlers.
	PendingWrites []PendingWrite `json:"pending_writes,omitempty"`
	// UpdatedAt is when the manifest was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewManifest creates an empty manifest for an execution.
func NewManifest(executionID, graphID string) *Manifest {
	return &Manifest{
		ID:          uuid.New().String(),
		ExecutionID: executionID,
		GraphID:     graphID,
	}
}

// Completion returns the recorded completion for a node, if present.
func (m *Manifest) Completion(nodeID string) (NodeCompletion, bool) {
	for _, rec := range m.Records {
		if rec.NodeID == nodeID {
			return rec, true
		}
	}
	return NodeCompletion{}, false
}

// Append adds a completion record and bumps the update time.
func (m *Manifest) Append(rec NodeCompletion) {
	m.Records = append(m.Records, rec)
	m.UpdatedAt = time.Now().UTC()
}

// CheckpointSaver persists execution manifests so a run can resume after an
// interruption: process restart, human-in-the-loop approval, timeout.
//
// Implementations must be safe for concurrent use.
type CheckpointSaver interface {
	// SaveManifest persists the manifest for an execution id, replacing any
	// previous manifest for the same id.
	SaveManifest(ctx context.Context, executionID string, manifest *Manifest) error
	// LoadManifest returns the manifest for an execution id, or nil when no
	// manifest exists.
	LoadManifest(ctx context.Context, executionID string) (*Manifest, error)
	// DeleteManifest removes the manifest for an execution id.
	DeleteManifest(ctx context.Context, executionID string) error
}
