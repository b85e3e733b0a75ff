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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

const (
	// defaultEventChannelBufferSize is the buffer size for event channels.
	defaultEventChannelBufferSize = 256
	// instrumentationName identifies this library's tracer.
	instrumentationName = "trpc.group/trpc-go/trpc-graph-go/graph"
)

// Executor is the top-level graph orchestrator. It walks the graph in
// dependency order, dispatches independent nodes in parallel, applies the
// node cache, persists checkpoints, and exposes full execution,
// demand-driven materialization and partitioned backfill entry points.
//
// An Executor is safe for concurrent use; multiple executions may run in
// parallel against the same instance and share its cache and registry.
type Executor struct {
	graph     *Graph
	handlers  map[string]NodeHandler
	cache     NodeCache
	saver     CheckpointSaver
	registry  artifact.Registry
	reachable map[string]bool
	// dataDeps maps a producer node to the consumers that declare one of
	// its artifacts in Requires. These are dependency edges without a
	// control-flow edge.
	dataDeps      map[string][]string
	dataProducers map[string][]string

	maxConcurrentNodes    int
	maxParallelPartitions int
	eventBufSize          int

	flight singleflight.Group
	tracer trace.Tracer
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*executorOptions)

type executorOptions struct {
	cache                 NodeCache
	saver                 CheckpointSaver
	registry              artifact.Registry
	maxConcurrentNodes    int
	maxParallelPartitions int
	eventBufSize          int
}

// WithNodeCache sets the node result cache. Without a cache every node
// recomputes on every run.
func WithNodeCache(cache NodeCache) ExecutorOption {
	return func(o *executorOptions) {
		o.cache = cache
	}
}

// WithCheckpointSaver sets the checkpoint store. With a saver configured,
// every node completion is persisted and executions sharing an execution id
// resume from the last completed node.
func WithCheckpointSaver(saver CheckpointSaver) ExecutorOption {
	return func(o *executorOptions) {
		o.saver = saver
	}
}

// WithArtifactRegistry sets the artifact registry used to record node
// productions and resolve materialization targets.
func WithArtifactRegistry(registry artifact.Registry) ExecutorOption {
	return func(o *executorOptions) {
		o.registry = registry
	}
}

// WithMaxConcurrentNodes bounds how many nodes may execute at once within
// one run. Zero means unbounded; data dependencies are the only implicit
// bound.
func WithMaxConcurrentNodes(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.maxConcurrentNodes = n
	}
}

// WithMaxParallelPartitions bounds backfill partition parallelism.
func WithMaxParallelPartitions(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.maxParallelPartitions = n
	}
}

// WithEventChannelBufferSize sets the buffer size for event channels
// (default: 256).
func WithEventChannelBufferSize(size int) ExecutorOption {
	return func(o *executorOptions) {
		o.eventBufSize = size
	}
}

// NewExecutor creates a new graph executor.
//
// Construction fails when the graph has validation errors, when the
// reachable portion of the graph is not a DAG, or when a reachable handler
// node references a handler the resolver does not know. Handler names are
// resolved once here, not per execution.
func NewExecutor(g *Graph, resolver HandlerResolver, opts ...ExecutorOption) (*Executor, error) {
	if g == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}
	result := Validate(g)
	if !result.IsValid {
		return nil, fmt.Errorf("invalid graph: %w", result.AsError())
	}

	options := executorOptions{
		maxParallelPartitions: defaultMaxParallelPartitions,
		eventBufSize:          defaultEventChannelBufferSize,
	}
	for _, opt := range opts {
		opt(&options)
	}

	e := &Executor{
		graph:                 g,
		handlers:              make(map[string]NodeHandler),
		cache:                 options.cache,
		saver:                 options.saver,
		registry:              options.registry,
		reachable:             reachableFrom(g, g.EntryNodeID()),
		maxConcurrentNodes:    options.maxConcurrentNodes,
		maxParallelPartitions: options.maxParallelPartitions,
		eventBufSize:          options.eventBufSize,
		tracer:                otel.Tracer(instrumentationName),
	}
	e.dataDeps, e.dataProducers = dataDependencyEdges(g)

	if err := e.checkAcyclic(); err != nil {
		return nil, err
	}

	for _, node := range g.Nodes() {
		if !e.reachable[node.ID] || node.Type != NodeTypeHandler || node.HandlerName == "" {
			continue
		}
		if resolver == nil {
			return nil, fmt.Errorf("%w: %s (no resolver configured)", ErrHandlerNotFound, node.HandlerName)
		}
		handler, ok := resolver.Handler(node.HandlerName)
		if !ok {
			return nil, fmt.Errorf("%w: %s (node %s)", ErrHandlerNotFound, node.HandlerName, node.ID)
		}
		e.handlers[node.ID] = handler
	}
	return e, nil
}

// Graph returns the graph this executor runs.
func (e *Executor) Graph() *Graph {
	return e.graph
}

// checkAcyclic runs Kahn's algorithm over the reachable subgraph, counting
// both control edges and artifact data dependencies. Validation only warns
// on cycles; the executor's scheduling is dependency driven and would never
// terminate on a cyclic graph, so cycles are rejected here.
func (e *Executor) checkAcyclic() error {
	indegree := make(map[string]int)
	for id := range e.reachable {
		indegree[id] = 0
	}
	forEachDependencyEdge(e.graph, e.dataDeps, func(from, to string) {
		if e.reachable[from] && e.reachable[to] {
			indegree[to]++
		}
	})

	queue := make([]string, 0, len(indegree))
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	processed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed++
		forEachOutgoingDependency(e.graph, e.dataDeps, current, func(to string) {
			if !e.reachable[to] {
				return
			}
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		})
	}
	if processed != len(indegree) {
		return ErrCyclicGraph
	}
	return nil
}

// reachableFrom returns the set of nodes reachable from start via control
// edges, start included.
func reachableFrom(g *Graph, start string) map[string]bool {
	visited := make(map[string]bool)
	if _, ok := g.Node(start); !ok {
		return visited
	}
	visited[start] = true
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g.Edges(current) {
			if _, ok := g.Node(edge.To); !ok {
				continue
			}
			if !visited[edge.To] {
				visited[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}
	return visited
}

// dataDependencyEdges derives producer-to-consumer dependency edges from
// artifact declarations: a node requiring an artifact depends on every node
// producing it. Returns the forward map (producer to consumers) and its
// reverse.
func dataDependencyEdges(g *Graph) (map[string][]string, map[string][]string) {
	forward := make(map[string][]string)
	reverse := make(map[string][]string)
	seen := make(map[string]bool)
	for _, consumer := range g.Nodes() {
		for _, key := range consumer.Requires {
			for _, producer := range g.ProducersOf(key.Path) {
				if producer.ID == consumer.ID {
					continue
				}
				pair := producer.ID + "\x00" + consumer.ID
				if seen[pair] {
					continue
				}
				seen[pair] = true
				forward[producer.ID] = append(forward[producer.ID], consumer.ID)
				reverse[consumer.ID] = append(reverse[consumer.ID], producer.ID)
			}
		}
	}
	return forward, reverse
}

// forEachDependencyEdge visits every dependency edge in the graph: control
// edges first, then artifact data dependencies.
func forEachDependencyEdge(g *Graph, dataDeps map[string][]string, visit func(from, to string)) {
	for _, edge := range g.AllEdges() {
		if _, ok := g.Node(edge.From); !ok {
			continue
		}
		if _, ok := g.Node(edge.To); !ok {
			continue
		}
		visit(edge.From, edge.To)
	}
	for from, tos := range dataDeps {
		for _, to := range tos {
			visit(from, to)
		}
	}
}

// forEachOutgoingDependency visits the dependency successors of one node.
func forEachOutgoingDependency(g *Graph, dataDeps map[string][]string, from string, visit func(to string)) {
	for _, edge := range g.Edges(from) {
		if _, ok := g.Node(edge.To); ok {
			visit(edge.To)
		}
	}
	for _, to := range dataDeps[from] {
		visit(to)
	}
}
