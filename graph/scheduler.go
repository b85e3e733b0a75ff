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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
	"trpc.group/trpc-go/trpc-graph-go/log"
)

// Execute runs the whole graph and populates the execution context with
// per-node results. Independent nodes execute concurrently; a node starts
// the instant all of its own dependencies have resolved, not when a nominal
// layer finishes.
//
// Cancellation of ctx stops admitting new nodes promptly, lets in-flight
// handlers observe cancellation cooperatively, and surfaces as an error
// wrapping ErrExecutionCanceled, distinct from handler failure.
func (e *Executor) Execute(ctx context.Context, ectx *ExecContext) error {
	return e.run(ctx, ectx, nil, FingerprintOptions{}, nil)
}

// ExecuteWithEvents runs the graph like Execute while streaming typed
// lifecycle events. The returned channel is closed when the run ends; the
// final event reports completion, failure or cancellation.
func (e *Executor) ExecuteWithEvents(ctx context.Context, ectx *ExecContext) (<-chan *ExecutionEvent, error) {
	events := make(chan *ExecutionEvent, e.eventBufSize)
	go func() {
		defer close(events)
		if err := e.run(ctx, ectx, nil, FingerprintOptions{}, events); err != nil {
			log.Debugf("graph execution %s ended: %v", ectx.ExecutionID(), err)
		}
	}()
	return events, nil
}

// scheduler drives one run over an include set of nodes. All bookkeeping
// maps are guarded by mu; node handlers run outside the lock.
type scheduler struct {
	exec      *Executor
	ectx      *ExecContext
	include   map[string]bool
	fpOpts    FingerprintOptions
	events    chan<- *ExecutionEvent
	callerCtx context.Context
	runCtx    context.Context
	cancelRun context.CancelFunc

	mu       sync.Mutex
	pending  map[string]int
	taken    map[string]int
	contribs map[string]map[string]State
	upstream map[string]map[string]Fingerprint
	outState map[string]State
	failures []error
	// queued buffers events produced while mu is held; they flush after
	// release so a full event buffer can never block edge resolution.
	queued []*ExecutionEvent

	cpMu     sync.Mutex
	manifest *Manifest
	replay   map[string]NodeCompletion

	wg  sync.WaitGroup
	sem chan struct{}
}

// run executes the nodes in include (nil means every node reachable from
// the entry) and returns the overall outcome.
func (e *Executor) run(ctx context.Context, ectx *ExecContext, include map[string]bool,
	fpOpts FingerprintOptions, events chan<- *ExecutionEvent) error {
	if include == nil {
		include = e.reachable
	}

	ctx, span := e.tracer.Start(ctx, "graph.execute", trace.WithAttributes(
		attribute.String("graph.id", e.graph.ID()),
		attribute.String("graph.execution_id", ectx.ExecutionID()),
	))
	defer span.End()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	s := &scheduler{
		exec:      e,
		ectx:      ectx,
		include:   include,
		fpOpts:    fpOpts,
		events:    events,
		callerCtx: ctx,
		runCtx:    runCtx,
		cancelRun: cancelRun,
		pending:   make(map[string]int),
		taken:     make(map[string]int),
		contribs:  make(map[string]map[string]State),
		upstream:  make(map[string]map[string]Fingerprint),
		outState:  make(map[string]State),
	}
	if e.maxConcurrentNodes > 0 {
		s.sem = make(chan struct{}, e.maxConcurrentNodes)
	}

	if err := s.loadCheckpoint(ctx); err != nil {
		return err
	}
	s.seed()
	s.wg.Wait()

	return s.outcome(span)
}

// loadCheckpoint prepares the manifest for this run: loading an existing
// one for the execution id enables resume, otherwise a fresh log starts.
// Stale pending writes are dropped; their nodes are not in the completion
// log and will re-execute (typically hitting the cache) and re-commit.
func (s *scheduler) loadCheckpoint(ctx context.Context) error {
	if s.exec.saver == nil {
		return nil
	}
	manifest, err := s.exec.saver.LoadManifest(ctx, s.ectx.ExecutionID())
	if err != nil {
		return fmt.Errorf("load checkpoint manifest: %w", err)
	}
	if manifest == nil || manifest.GraphID != s.exec.graph.ID() {
		s.manifest = NewManifest(s.ectx.ExecutionID(), s.exec.graph.ID())
		return nil
	}
	manifest.PendingWrites = nil
	s.manifest = manifest
	s.replay = make(map[string]NodeCompletion, len(manifest.Records))
	for _, rec := range manifest.Records {
		s.replay[rec.NodeID] = rec
	}
	log.Debugf("resuming execution %s from %d completed nodes",
		s.ectx.ExecutionID(), len(s.replay))
	return nil
}

// seed counts unresolved dependencies per node and dispatches the roots.
func (s *scheduler) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roots []string
	for id := range s.include {
		count := 0
		for _, edge := range s.exec.graph.InEdges(id) {
			if s.include[edge.From] {
				count++
			}
		}
		for _, producer := range s.exec.dataProducers[id] {
			if s.include[producer] {
				count++
			}
		}
		s.pending[id] = count
		if count == 0 {
			roots = append(roots, id)
		}
	}
	for _, id := range roots {
		s.dispatchLocked(id)
	}
}

func (s *scheduler) dispatchLocked(id string) {
	s.wg.Add(1)
	go s.runNode(id)
}

// runNode executes one admitted node end to end: input assembly,
// fingerprinting, cache lookup, handler invocation, artifact registration,
// checkpointing and release of dependents.
func (s *scheduler) runNode(id string) {
	defer s.wg.Done()
	if s.sem != nil {
		s.sem <- struct{}{}
		defer func() { <-s.sem }()
	}
	if s.runCtx.Err() != nil {
		return
	}
	node, ok := s.exec.graph.Node(id)
	if !ok {
		s.fail(id, fmt.Errorf("node %s not found", id))
		return
	}

	s.mu.Lock()
	input := s.assembleInputLocked(id)
	ups := make(map[string]Fingerprint, len(s.upstream[id]))
	for from, fp := range s.upstream[id] {
		ups[from] = fp
	}
	s.mu.Unlock()

	s.emit(newExecutionEvent(EventNodeStart, s.ectx.ExecutionID(), id))

	ctx, span := s.exec.tracer.Start(s.runCtx, "graph.node", trace.WithAttributes(
		attribute.String("graph.node.id", id),
		attribute.String("graph.node.handler", node.HandlerName),
	))
	result, fp, cacheHit, err := s.executeNode(ctx, node, input, ups)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		s.fail(id, err)
		return
	}
	span.SetAttributes(attribute.Bool("graph.node.cache_hit", cacheHit))
	span.End()

	s.finish(node, input, result, fp, cacheHit)
}

// assembleInputLocked merges the branch states of the node's taken
// predecessors over the initial state. Predecessors merge in sorted node id
// order, so overlapping keys resolve deterministically (last writer wins);
// every branch's complete output additionally stays addressable through
// ExecContext.NodeResult, so nothing is dropped.
func (s *scheduler) assembleInputLocked(id string) State {
	input := s.ectx.InitialState()
	for _, from := range sortedKeys(s.contribs[id]) {
		for k, v := range s.contribs[id][from] {
			input[k] = v
		}
	}
	return input
}

// executeNode computes the node fingerprint and produces the node result,
// replaying the checkpoint log, consulting the cache and invoking the
// handler as appropriate. Duplicate concurrent computations of one
// fingerprint coalesce onto a single in-flight invocation.
func (s *scheduler) executeNode(ctx context.Context, node *Node, input State,
	ups map[string]Fingerprint) (any, Fingerprint, bool, error) {
	fp := ComputeFingerprint(node, ups, s.fpOpts)

	if rec, ok := s.replayRecord(node.ID); ok && rec.Fingerprint == fp {
		cached := &CachedResult{Payload: rec.Payload}
		result, err := cached.Decode()
		if err != nil {
			return nil, fp, false, fmt.Errorf("decode checkpointed result: %w", err)
		}
		return result, fp, true, nil
	}

	handler := s.exec.handlers[node.ID]
	if node.Type != NodeTypeHandler || handler == nil {
		// Structural nodes carry no work; they pass state through.
		return nil, fp, false, nil
	}

	invoke := func(ctx context.Context) (any, error) {
		return handler.Invoke(ctx, &Invocation{
			NodeID:      node.ID,
			ExecutionID: s.ectx.ExecutionID(),
			State:       input,
			Partition:   s.fpOpts.Partition,
		})
	}

	if s.exec.cache == nil {
		result, err := invoke(ctx)
		return result, fp, false, err
	}

	// With a cache attached, duplicate concurrent computations of one
	// fingerprint coalesce onto a single in-flight invocation so the cache
	// sees at most one computation per fingerprint.
	type flightResult struct {
		value any
		hit   bool
	}
	v, err, _ := s.exec.flight.Do(string(fp), func() (any, error) {
		entry, found, err := s.exec.cache.Get(ctx, fp)
		if err != nil {
			log.Warnf("cache lookup for node %s failed: %v", node.ID, err)
		} else if found {
			result, err := entry.Decode()
			if err != nil {
				return nil, fmt.Errorf("decode cached result: %w", err)
			}
			return flightResult{value: result, hit: true}, nil
		}
		result, err := invoke(ctx)
		if err != nil {
			// A failed attempt must never poison the cache.
			return nil, err
		}
		if entry, err := encodeCachedResult(node.ID, fp, result); err != nil {
			log.Warnf("encode result of node %s failed: %v", node.ID, err)
		} else if err := s.exec.cache.Put(ctx, fp, entry); err != nil {
			log.Warnf("cache write for node %s failed: %v", node.ID, err)
		}
		return flightResult{value: result}, nil
	})
	if err != nil {
		return nil, fp, false, err
	}
	fr := v.(flightResult)
	return fr.value, fp, fr.hit, nil
}

func (s *scheduler) replayRecord(nodeID string) (NodeCompletion, bool) {
	if s.replay == nil {
		return NodeCompletion{}, false
	}
	rec, ok := s.replay[nodeID]
	return rec, ok
}

// finish commits a successful node completion: artifact registration,
// checkpoint append, context update, event emission and edge resolution.
func (s *scheduler) finish(node *Node, input State, result any, fp Fingerprint, cacheHit bool) {
	if err := s.registerArtifact(node, fp); err != nil {
		s.fail(node.ID, err)
		return
	}
	s.ectx.recordCompletion(node.ID, result, fp, cacheHit)
	s.appendCheckpoint(node.ID, result, fp, cacheHit)

	evt := newExecutionEvent(EventNodeComplete, s.ectx.ExecutionID(), node.ID)
	evt.CacheHit = cacheHit
	s.emit(evt)

	out := mergeStates(input, contribution(node.ID, result))

	s.mu.Lock()
	s.outState[node.ID] = out
	s.resolveOutgoingLocked(node.ID, out, fp)
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	for _, evt := range queued {
		s.emit(evt)
	}
}

// registerArtifact records the node's production in the registry, bracketed
// by a pending write in the checkpoint log so an interruption between
// completion and commit is observable.
func (s *scheduler) registerArtifact(node *Node, fp Fingerprint) error {
	if node.Produces == nil || s.exec.registry == nil {
		return nil
	}
	key := *node.Produces
	if len(key.Partition) == 0 && len(s.fpOpts.Partition) > 0 {
		key = key.WithPartition(s.fpOpts.Partition)
	}

	s.markPendingWrite(node.ID, key, fp)
	version := &artifact.Version{
		ID:              uuid.New().String(),
		ProducingNodeID: node.ID,
		Fingerprint:     fp.String(),
	}
	if err := s.exec.registry.RegisterVersion(s.callerCtx, key, version); err != nil {
		return fmt.Errorf("register artifact %s: %w", key, err)
	}
	s.clearPendingWrite(node.ID)
	return nil
}

func (s *scheduler) markPendingWrite(nodeID string, key artifact.Key, fp Fingerprint) {
	if s.exec.saver == nil {
		return
	}
	s.cpMu.Lock()
	defer s.cpMu.Unlock()
	s.manifest.PendingWrites = append(s.manifest.PendingWrites, PendingWrite{
		NodeID:      nodeID,
		ArtifactKey: key.String(),
		Fingerprint: fp,
	})
	s.saveManifestLocked()
}

func (s *scheduler) clearPendingWrite(nodeID string) {
	if s.exec.saver == nil {
		return
	}
	s.cpMu.Lock()
	defer s.cpMu.Unlock()
	writes := s.manifest.PendingWrites[:0]
	for _, w := range s.manifest.PendingWrites {
		if w.NodeID != nodeID {
			writes = append(writes, w)
		}
	}
	s.manifest.PendingWrites = writes
}

func (s *scheduler) appendCheckpoint(nodeID string, result any, fp Fingerprint, cacheHit bool) {
	if s.exec.saver == nil {
		return
	}
	s.cpMu.Lock()
	defer s.cpMu.Unlock()
	if _, done := s.manifest.Completion(nodeID); done {
		// Replayed node, already in the log.
		return
	}
	rec := NodeCompletion{
		NodeID:      nodeID,
		Fingerprint: fp,
		CacheHit:    cacheHit,
		Timestamp:   time.Now().UTC(),
	}
	if entry, err := encodeCachedResult(nodeID, fp, result); err != nil {
		log.Warnf("encode checkpoint payload for node %s failed: %v", nodeID, err)
	} else {
		rec.Payload = entry.Payload
	}
	s.manifest.Append(rec)
	s.saveManifestLocked()
}

func (s *scheduler) saveManifestLocked() {
	if err := s.exec.saver.SaveManifest(s.callerCtx, s.ectx.ExecutionID(), s.manifest); err != nil {
		log.Warnf("save checkpoint manifest for execution %s failed: %v",
			s.ectx.ExecutionID(), err)
	}
}

// resolveOutgoingLocked evaluates the completed node's outgoing edges and
// releases, or skips, its dependents. Conditional edges are matched against
// the node's resulting context state; the default edge fires only when no
// conditional sibling matched; multiple matching conditional edges all
// release their branches.
func (s *scheduler) resolveOutgoingLocked(id string, out State, fp Fingerprint) {
	edges := s.exec.graph.Edges(id)

	matched := false
	for _, edge := range edges {
		if edge.IsConditional() && fieldMatches(out, edge.Condition) {
			matched = true
		}
	}

	for _, edge := range edges {
		taken := true
		switch {
		case edge.IsConditional():
			taken = fieldMatches(out, edge.Condition)
		case edge.IsDefault():
			taken = !matched
		}
		s.resolveDepLocked(edge.To, id, out, fp, taken)
	}
	for _, consumer := range s.exec.dataDeps[id] {
		s.resolveDepLocked(consumer, id, nil, fp, true)
	}
}

// resolveDepLocked marks one inbound dependency of to as resolved. A node
// is admitted once all inbound dependencies resolved with at least one
// taken; it is skipped when none were taken.
func (s *scheduler) resolveDepLocked(to, from string, branch State, fp Fingerprint, taken bool) {
	if !s.include[to] {
		return
	}
	if taken {
		s.taken[to]++
		if branch != nil {
			if s.contribs[to] == nil {
				s.contribs[to] = make(map[string]State)
			}
			s.contribs[to][from] = branch
		}
		if s.upstream[to] == nil {
			s.upstream[to] = make(map[string]Fingerprint)
		}
		s.upstream[to][from] = fp
	}
	s.pending[to]--
	if s.pending[to] > 0 {
		return
	}
	if s.taken[to] > 0 {
		s.dispatchLocked(to)
		return
	}
	s.skipLocked(to)
}

// skipLocked marks a node skipped and propagates the skip downstream.
func (s *scheduler) skipLocked(id string) {
	s.ectx.recordSkip(id)
	s.queued = append(s.queued, newExecutionEvent(EventNodeSkipped, s.ectx.ExecutionID(), id))
	for _, edge := range s.exec.graph.Edges(id) {
		s.resolveDepLocked(edge.To, id, nil, "", false)
	}
	for _, consumer := range s.exec.dataDeps[id] {
		s.resolveDepLocked(consumer, id, nil, "", false)
	}
}

// fail records a node failure and stops admitting further nodes. In-flight
// handlers observe cancellation cooperatively through their context.
func (s *scheduler) fail(id string, err error) {
	nodeErr := &NodeError{NodeID: id, Err: err}
	log.Errorf("graph execution %s: %v", s.ectx.ExecutionID(), nodeErr)

	s.mu.Lock()
	s.failures = append(s.failures, nodeErr)
	s.mu.Unlock()

	evt := newExecutionEvent(EventNodeError, s.ectx.ExecutionID(), id)
	evt.Err = nodeErr.Error()
	s.emit(evt)
	s.cancelRun()
}

// outcome classifies how the run ended. Cancellation of the caller context
// wins over handler failures so a canceled run is reported as canceled,
// not failed.
func (s *scheduler) outcome(span trace.Span) error {
	if err := s.callerCtx.Err(); err != nil {
		s.emit(newExecutionEvent(EventGraphCanceled, s.ectx.ExecutionID(), ""))
		span.SetStatus(codes.Error, "canceled")
		return fmt.Errorf("%w: %v", ErrExecutionCanceled, err)
	}

	s.mu.Lock()
	failures := s.failures
	s.mu.Unlock()
	if len(failures) > 0 {
		evt := newExecutionEvent(EventGraphError, s.ectx.ExecutionID(), "")
		evt.Err = failures[0].Error()
		s.emit(evt)
		span.SetStatus(codes.Error, failures[0].Error())
		return failures[0]
	}

	s.mu.Lock()
	final := s.outState[s.exec.graph.ExitNodeID()]
	s.mu.Unlock()
	if final != nil {
		s.ectx.recordFinalState(final)
	}
	s.emit(newExecutionEvent(EventGraphComplete, s.ectx.ExecutionID(), ""))
	return nil
}

// emit delivers an event to the stream, if one is attached. Delivery blocks
// on a full buffer but aborts when the caller context ends, so a stalled
// consumer cannot wedge a canceled run.
func (s *scheduler) emit(evt *ExecutionEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- evt:
	case <-s.callerCtx.Done():
	}
}

// fieldMatches evaluates a field-equality condition against the node's
// resulting context state.
func fieldMatches(out State, cond *EdgeCondition) bool {
	if cond == nil {
		return true
	}
	value, ok := out[cond.Field]
	if !ok {
		return false
	}
	return fmt.Sprintf("%v", value) == cond.Equals
}
