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
	"sync"

	"github.com/google/uuid"
)

// ExecContext holds the mutable per-execution state of one graph run: which
// nodes completed, what each produced, and under which fingerprint. One
// ExecContext exists per top-level execution; it is owned by that execution
// and must not be reused across runs.
//
// All accessors are safe for concurrent use. Mutation happens only through
// the executor, which synchronizes node completions internally.
type ExecContext struct {
	executionID string
	graph       *Graph
	initial     State

	mu           sync.RWMutex
	results      map[string]any
	fingerprints map[string]Fingerprint
	cacheHits    map[string]bool
	skipped      map[string]bool
	finalState   State
}

// ExecContextOption configures an ExecContext.
type ExecContextOption func(*ExecContext)

// WithExecutionID fixes the execution id instead of generating one. Use the
// same id across process restarts to resume a checkpointed execution.
func WithExecutionID(id string) ExecContextOption {
	return func(c *ExecContext) {
		c.executionID = id
	}
}

// NewExecContext creates the execution context for one run of the graph.
// The initial state seeds every branch; it is cloned, so the caller's map is
// never mutated.
func NewExecContext(g *Graph, initial State, opts ...ExecContextOption) *ExecContext {
	c := &ExecContext{
		executionID:  uuid.New().String(),
		graph:        g,
		initial:      initial.Clone(),
		results:      make(map[string]any),
		fingerprints: make(map[string]Fingerprint),
		cacheHits:    make(map[string]bool),
		skipped:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecutionID returns the unique id of this execution.
func (c *ExecContext) ExecutionID() string {
	return c.executionID
}

// Graph returns the immutable graph this context executes.
func (c *ExecContext) Graph() *Graph {
	return c.graph
}

// InitialState returns a copy of the state the execution was seeded with.
func (c *ExecContext) InitialState() State {
	return c.initial.Clone()
}

// NodeResult returns the result recorded for a completed node.
func (c *ExecContext) NodeResult(nodeID string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[nodeID]
	return result, ok
}

// NodeFingerprint returns the fingerprint a completed node executed under.
func (c *ExecContext) NodeFingerprint(nodeID string) (Fingerprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fp, ok := c.fingerprints[nodeID]
	return fp, ok
}

// CacheHit reports whether the node's result came from the cache.
func (c *ExecContext) CacheHit(nodeID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cacheHits[nodeID]
}

// Skipped reports whether the node was skipped because no inbound edge was
// taken.
func (c *ExecContext) Skipped(nodeID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skipped[nodeID]
}

// CompletedNodes returns the ids of all completed nodes in sorted order.
func (c *ExecContext) CompletedNodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.results)
}

// FinalState returns the merged state observed at the end of the run, or
// nil while the run is in flight.
func (c *ExecContext) FinalState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.finalState == nil {
		return nil
	}
	return c.finalState.Clone()
}

func (c *ExecContext) recordCompletion(nodeID string, result any, fp Fingerprint, cacheHit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[nodeID] = result
	c.fingerprints[nodeID] = fp
	if cacheHit {
		c.cacheHits[nodeID] = true
	}
}

func (c *ExecContext) recordSkip(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped[nodeID] = true
}

func (c *ExecContext) recordFinalState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalState = s
}
