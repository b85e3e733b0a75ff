//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

// Package graph provides a directed-acyclic-graph orchestrator that executes
// typed node workloads with dependency ordering, parallel execution of
// independent branches, fingerprint-keyed result caching, checkpoint/resume
// and demand-driven artifact materialization.
package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// NodeType represents the type of a node in the graph.
type NodeType string

const (
	// NodeTypeStart represents the start node of the graph.
	NodeTypeStart NodeType = "start"
	// NodeTypeEnd represents the end node of the graph.
	NodeTypeEnd NodeType = "end"
	// NodeTypeHandler represents a node that executes a registered handler.
	NodeTypeHandler NodeType = "handler"
	// NodeTypeFanout represents a structural node that releases multiple
	// outgoing branches without doing work itself.
	NodeTypeFanout NodeType = "fanout"
	// NodeTypeJoin represents a structural node that merges multiple
	// incoming branches without doing work itself.
	NodeTypeJoin NodeType = "join"
)

// String returns the string representation of the node type.
func (nt NodeType) String() string {
	return string(nt)
}

// SnapshotPolicy controls how a node's fingerprint accounts for dynamic
// partition sets.
type SnapshotPolicy string

const (
	// SnapshotStableConfig hashes the node configuration only. The
	// fingerprint is insensitive to new partitions appearing.
	SnapshotStableConfig SnapshotPolicy = "stable_config"
	// SnapshotKeys hashes the configuration plus the requested partition
	// key set, so the fingerprint changes when the partition set changes.
	SnapshotKeys SnapshotPolicy = "snapshot_keys"
	// SnapshotAlwaysFresh folds a timestamp into the fingerprint. Such a
	// node recomputes on every run; it defeats caching by design and is
	// intended for live sources.
	SnapshotAlwaysFresh SnapshotPolicy = "always_fresh"
)

// Node represents a unit of work in the graph.
type Node struct {
	// ID is the unique identifier of the node within a graph.
	ID string
	// Name is the human-readable name of the node.
	Name string
	// Type is the type of the node.
	Type NodeType
	// HandlerName references an externally registered handler. Required for
	// handler nodes; validation warns when absent.
	HandlerName string
	// Config is the static configuration of the node. It is folded into the
	// node's fingerprint, so changing it invalidates cached results for the
	// node and everything downstream.
	Config map[string]any
	// Metadata carries ordered tagging/filtering attributes. Metadata does
	// not affect execution semantics and is excluded from fingerprints.
	Metadata *orderedmap.OrderedMap[string, string]
	// Produces declares the artifact this node produces, if any.
	Produces *artifact.Key
	// Requires declares artifact data dependencies of this node. These are
	// dependencies in addition to control-flow edges and may exist without
	// a direct edge to the producing node.
	Requires []artifact.Key
	// Snapshot is the snapshot policy applied when fingerprinting the node.
	// Empty means SnapshotStableConfig.
	Snapshot SnapshotPolicy
}

// EdgeConditionType represents the kind of condition attached to an edge.
type EdgeConditionType string

const (
	// EdgeConditionAlways marks an unconditional edge.
	EdgeConditionAlways EdgeConditionType = "always"
	// EdgeConditionFieldEquals marks an edge taken when a field of the
	// source node's result equals a value.
	EdgeConditionFieldEquals EdgeConditionType = "field_equals"
	// EdgeConditionDefault marks the edge taken when no conditional
	// sibling edge from the same source matched.
	EdgeConditionDefault EdgeConditionType = "default"
)

// EdgeCondition describes when a conditional edge is taken.
type EdgeCondition struct {
	// Type is the kind of condition.
	Type EdgeConditionType
	// Field is the result field inspected for field-equality conditions.
	Field string
	// Equals is the value the field must equal for the edge to be taken.
	Equals string
}

// Edge represents a directed control-flow transition between two nodes.
type Edge struct {
	// From is the source node ID.
	From string
	// To is the target node ID.
	To string
	// Condition is an optional condition for the edge.
	// If nil, the edge is always taken.
	Condition *EdgeCondition
}

// IsDefault reports whether the edge is a default edge.
func (e *Edge) IsDefault() bool {
	return e.Condition != nil && e.Condition.Type == EdgeConditionDefault
}

// IsConditional reports whether the edge carries a field-equality condition.
func (e *Edge) IsConditional() bool {
	return e.Condition != nil && e.Condition.Type == EdgeConditionFieldEquals
}

// Graph is an immutable aggregate of nodes and edges. Graphs are constructed
// through the Builder, which validates the structure before handing out a
// Graph; once built, a Graph is never mutated and may safely be shared by
// concurrent executions.
type Graph struct {
	id          string
	name        string
	nodes       []*Node
	nodeIndex   map[string]*Node
	edges       []*Edge
	outEdges    map[string][]*Edge
	inEdges     map[string][]*Edge
	entryNodeID string
	exitNodeID  string
}

// ID returns the graph id.
func (g *Graph) ID() string { return g.id }

// Name returns the graph display name.
func (g *Graph) Name() string { return g.name }

// EntryNodeID returns the id of the start node.
func (g *Graph) EntryNodeID() string { return g.entryNodeID }

// ExitNodeID returns the id of the end node.
func (g *Graph) ExitNodeID() string { return g.exitNodeID }

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, exists := g.nodeIndex[id]
	return node, exists
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns all outgoing edges from a node.
func (g *Graph) Edges(nodeID string) []*Edge {
	return g.outEdges[nodeID]
}

// InEdges returns all incoming edges of a node.
func (g *Graph) InEdges(nodeID string) []*Edge {
	return g.inEdges[nodeID]
}

// AllEdges returns every edge in insertion order.
func (g *Graph) AllEdges() []*Edge {
	return g.edges
}

// ProducersOf returns the nodes that declare production of the artifact path,
// in insertion order.
func (g *Graph) ProducersOf(path string) []*Node {
	var producers []*Node
	for _, node := range g.nodes {
		if node.Produces != nil && node.Produces.Path == path {
			producers = append(producers, node)
		}
	}
	return producers
}

// newGraph assembles the immutable aggregate from builder state. Duplicate
// node ids keep the first occurrence in the index; validation reports the
// duplicates.
func newGraph(id, name string, nodes []*Node, edges []*Edge, entryNodeID, exitNodeID string) *Graph {
	g := &Graph{
		id:          id,
		name:        name,
		nodes:       nodes,
		nodeIndex:   make(map[string]*Node, len(nodes)),
		edges:       edges,
		outEdges:    make(map[string][]*Edge),
		inEdges:     make(map[string][]*Edge),
		entryNodeID: entryNodeID,
		exitNodeID:  exitNodeID,
	}
	for _, node := range nodes {
		if _, exists := g.nodeIndex[node.ID]; !exists {
			g.nodeIndex[node.ID] = node
		}
	}
	for _, edge := range edges {
		g.outEdges[edge.From] = append(g.outEdges[edge.From], edge)
		g.inEdges[edge.To] = append(g.inEdges[edge.To], edge)
	}
	return g
}
