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
	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// AffectedNodes returns the full downstream closure of the changed nodes:
// every node reachable from any of them over control edges or artifact data
// dependencies, the changed nodes themselves included. Fingerprints are
// hierarchical, so every node in this set has an invalidated cache entry
// and must recompute even though its own configuration did not change.
func AffectedNodes(g *Graph, changed []string) map[string]bool {
	dataDeps, _ := dataDependencyEdges(g)

	affected := make(map[string]bool)
	queue := make([]string, 0, len(changed))
	add := func(id string) {
		if _, ok := g.Node(id); !ok {
			return
		}
		if !affected[id] {
			affected[id] = true
			queue = append(queue, id)
		}
	}
	for _, id := range changed {
		add(id)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g.Edges(current) {
			add(edge.To)
		}
		for _, consumer := range dataDeps[current] {
			add(consumer)
		}
	}
	return affected
}

// AffectedByArtifacts resolves changed artifacts to the nodes consuming
// them and returns the downstream closure of those consumers. Consumption
// is a data dependency: it may exist without any control edge to the
// artifact's producer.
func AffectedByArtifacts(g *Graph, keys []artifact.Key) map[string]bool {
	var seeds []string
	for _, node := range g.Nodes() {
		for _, required := range node.Requires {
			for _, key := range keys {
				if required.Path == key.Path {
					seeds = append(seeds, node.ID)
				}
			}
		}
	}
	return AffectedNodes(g, seeds)
}
