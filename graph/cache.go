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

	"github.com/bytedance/sonic"
)

// CachedResult is a previously computed node result keyed by fingerprint.
// Entries are created the first time a node completes successfully under a
// fingerprint, read on every subsequent attempt, and never mutated; a
// changed input supersedes the entry with a new fingerprint-result pair.
type CachedResult struct {
	// Fingerprint is the cache key.
	Fingerprint Fingerprint `json:"fingerprint"`
	// NodeID is the node that produced the result.
	NodeID string `json:"node_id"`
	// Payload is the serialized node output.
	Payload []byte `json:"payload"`
	// Timestamp is when the result was computed.
	Timestamp time.Time `json:"timestamp"`
}

// Decode deserializes the cached payload.
func (r *CachedResult) Decode() (any, error) {
	if len(r.Payload) == 0 {
		return nil, nil
	}
	var value any
	if err := sonic.Unmarshal(r.Payload, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// encodeCachedResult serializes a node result into a cache entry.
func encodeCachedResult(nodeID string, fp Fingerprint, result any) (*CachedResult, error) {
	entry := &CachedResult{
		Fingerprint: fp,
		NodeID:      nodeID,
		Timestamp:   time.Now().UTC(),
	}
	if result != nil {
		payload, err := sonic.Marshal(result)
		if err != nil {
			return nil, err
		}
		entry.Payload = payload
	}
	return entry, nil
}

// NodeCache maps node fingerprints to previously computed results.
//
// Implementations must be safe for concurrent use: the cache is shared and
// mutated by multiple in-flight executions. The executor coalesces duplicate
// concurrent computations per fingerprint itself, so implementations only
// need plain lookup and insert semantics; eviction policy is the
// implementation's concern.
type NodeCache interface {
	// Get returns the cached result for a fingerprint, if present.
	Get(ctx context.Context, fp Fingerprint) (*CachedResult, bool, error)
	// Put stores a result under its fingerprint.
	Put(ctx context.Context, fp Fingerprint, result *CachedResult) error
}
