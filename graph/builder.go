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

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// Builder provides a fluent interface for constructing graphs.
// This is the only construction path for graphs; there is no on-disk
// definition format.
//
// Example usage:
//
//	g, err := graph.NewBuilder("pipeline").
//	  AddStartNode("start").
//	  AddHandlerNode("extract", "extractor").
//	  AddHandlerNode("load", "loader").
//	  AddEndNode("end").
//	  AddEdge("start", "extract").
//	  AddEdge("extract", "load").
//	  AddEdge("load", "end").
//	  Build()
//
// Build collects all structural defects in one pass rather than failing on
// the first; warnings are advisory and do not prevent the build.
type Builder struct {
	id    string
	name  string
	nodes []*Node
	edges []*Edge
	entry string
	exit  string
}

// NodeOption configures a node added through the builder.
type NodeOption func(*Node)

// WithNodeName sets the display name of the node.
func WithNodeName(name string) NodeOption {
	return func(n *Node) {
		n.Name = name
	}
}

// WithNodeConfig sets the static configuration of the node. The
// configuration participates in the node's fingerprint.
func WithNodeConfig(config map[string]any) NodeOption {
	return func(n *Node) {
		n.Config = config
	}
}

// WithNodeMetadata attaches an ordered metadata entry to the node. Metadata
// is tagging only and never affects execution or fingerprints.
func WithNodeMetadata(key, value string) NodeOption {
	return func(n *Node) {
		if n.Metadata == nil {
			n.Metadata = orderedmap.New[string, string]()
		}
		n.Metadata.Set(key, value)
	}
}

// WithProduces declares the artifact this node produces.
func WithProduces(key artifact.Key) NodeOption {
	return func(n *Node) {
		n.Produces = &key
	}
}

// WithRequires declares artifact data dependencies of the node.
func WithRequires(keys ...artifact.Key) NodeOption {
	return func(n *Node) {
		n.Requires = append(n.Requires, keys...)
	}
}

// WithSnapshotPolicy sets the snapshot policy used when fingerprinting the
// node.
func WithSnapshotPolicy(policy SnapshotPolicy) NodeOption {
	return func(n *Node) {
		n.Snapshot = policy
	}
}

// NewBuilder creates a new graph builder. The graph id defaults to the name.
func NewBuilder(name string) *Builder {
	return &Builder{
		id:   name,
		name: name,
	}
}

// WithID overrides the graph id.
func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

// AddNode adds a fully specified node. Most callers should prefer the typed
// helpers below.
func (b *Builder) AddNode(node *Node, opts ...NodeOption) *Builder {
	for _, opt := range opts {
		opt(node)
	}
	if node.Name == "" {
		node.Name = node.ID
	}
	b.nodes = append(b.nodes, node)
	return b
}

// AddStartNode adds the start node and marks it as the entry point.
func (b *Builder) AddStartNode(id string, opts ...NodeOption) *Builder {
	b.AddNode(&Node{ID: id, Type: NodeTypeStart}, opts...)
	b.entry = id
	return b
}

// AddEndNode adds the end node and marks it as the exit point.
func (b *Builder) AddEndNode(id string, opts ...NodeOption) *Builder {
	b.AddNode(&Node{ID: id, Type: NodeTypeEnd}, opts...)
	b.exit = id
	return b
}

// AddHandlerNode adds a node that executes the handler registered under
// handlerName.
func (b *Builder) AddHandlerNode(id, handlerName string, opts ...NodeOption) *Builder {
	return b.AddNode(&Node{ID: id, Type: NodeTypeHandler, HandlerName: handlerName}, opts...)
}

// AddFanoutNode adds a structural node releasing multiple branches.
func (b *Builder) AddFanoutNode(id string, opts ...NodeOption) *Builder {
	return b.AddNode(&Node{ID: id, Type: NodeTypeFanout}, opts...)
}

// AddJoinNode adds a structural node merging multiple branches.
func (b *Builder) AddJoinNode(id string, opts ...NodeOption) *Builder {
	return b.AddNode(&Node{ID: id, Type: NodeTypeJoin}, opts...)
}

// AddEdge adds an unconditional edge between two nodes.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges = append(b.edges, &Edge{From: from, To: to})
	return b
}

// AddConditionalEdge adds an edge taken when the source node's result field
// equals the given value.
func (b *Builder) AddConditionalEdge(from, to, field, equals string) *Builder {
	b.edges = append(b.edges, &Edge{
		From: from,
		To:   to,
		Condition: &EdgeCondition{
			Type:   EdgeConditionFieldEquals,
			Field:  field,
			Equals: equals,
		},
	})
	return b
}

// AddDefaultEdge adds the edge taken when no conditional sibling edge from
// the same source matched. At most one default edge may leave a node.
func (b *Builder) AddDefaultEdge(from, to string) *Builder {
	b.edges = append(b.edges, &Edge{
		From: from,
		To:   to,
		Condition: &EdgeCondition{
			Type: EdgeConditionDefault,
		},
	})
	return b
}

// SetEntryPoint overrides the entry node id. Normally set by AddStartNode.
func (b *Builder) SetEntryPoint(nodeID string) *Builder {
	b.entry = nodeID
	return b
}

// SetFinishPoint overrides the exit node id. Normally set by AddEndNode.
func (b *Builder) SetFinishPoint(nodeID string) *Builder {
	b.exit = nodeID
	return b
}

// Build assembles the graph and validates it. Validation errors block the
// build; warnings are logged by the caller's discretion via Validate.
func (b *Builder) Build() (*Graph, error) {
	g := newGraph(b.id, b.name, b.nodes, b.edges, b.entry, b.exit)
	result := Validate(g)
	if !result.IsValid {
		return nil, fmt.Errorf("invalid graph %s: %w", b.name, result.AsError())
	}
	return g, nil
}

// MustBuild assembles the graph or panics if invalid.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

// BuildUnchecked assembles the graph without validating it. Intended for
// callers that want to inspect the full ValidationResult themselves.
func (b *Builder) BuildUnchecked() *Graph {
	return newGraph(b.id, b.name, b.nodes, b.edges, b.entry, b.exit)
}
