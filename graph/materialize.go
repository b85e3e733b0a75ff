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

	"trpc.group/trpc-go/trpc-graph-go/artifact"
	"trpc.group/trpc-go/trpc-graph-go/log"
)

// MaterializeOption configures a materialization run.
type MaterializeOption func(*materializeOptions)

type materializeOptions struct {
	initial      State
	partitionSet []artifact.PartitionKey
}

// WithInitialState seeds the materialization's execution context.
func WithInitialState(initial State) MaterializeOption {
	return func(o *materializeOptions) {
		o.initial = initial
	}
}

// WithPartitionSet declares the full partition set of the enclosing request.
// Nodes with the SnapshotKeys policy fold the set into their fingerprints,
// so their cached results invalidate when the partition set changes.
func WithPartitionSet(partitions []artifact.PartitionKey) MaterializeOption {
	return func(o *materializeOptions) {
		o.partitionSet = partitions
	}
}

// Materialize executes only the minimal subgraph required to produce the
// target artifact and returns the version it resolved to. The subgraph is
// the ancestor closure of the target's producers over control edges and
// artifact data dependencies; sibling branches with no path to a producer
// are not executed. Caching applies exactly as in full execution.
//
// A partitioned target (target.Partition set) materializes that one slice:
// the partition reaches handlers through Invocation.Partition and is folded
// into the fingerprints of artifact-bound nodes, so each slice caches
// separately.
func (e *Executor) Materialize(ctx context.Context, target artifact.Key,
	opts ...MaterializeOption) (*artifact.Version, error) {
	versions, err := e.materialize(ctx, []artifact.Key{target}, opts)
	if err != nil {
		return nil, err
	}
	return versions[0], nil
}

// MaterializeMany materializes several targets in one run. Closures are
// unioned, so an ancestor shared by two targets executes at most once for
// the combined request. Returned versions correspond to targets by index.
//
// All targets must address the same partition: one run executes under one
// partition, and a single combined subgraph run cannot fingerprint two
// slices at once. Mixed-partition lists are rejected; issue one call per
// partition instead, or use Backfill for a partition range.
func (e *Executor) MaterializeMany(ctx context.Context, targets []artifact.Key,
	opts ...MaterializeOption) ([]*artifact.Version, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no materialization targets")
	}
	for _, target := range targets[1:] {
		if !target.Partition.Equal(targets[0].Partition) {
			return nil, fmt.Errorf("%w: %q vs %q",
				ErrMixedPartitions, targets[0].Partition.String(), target.Partition.String())
		}
	}
	return e.materialize(ctx, targets, opts)
}

func (e *Executor) materialize(ctx context.Context, targets []artifact.Key,
	opts []MaterializeOption) ([]*artifact.Version, error) {
	if e.registry == nil {
		return nil, ErrNoArtifactRegistry
	}
	var options materializeOptions
	for _, opt := range opts {
		opt(&options)
	}

	seeds := make([]string, 0, len(targets))
	for _, target := range targets {
		found := false
		for _, producer := range e.graph.ProducersOf(target.Path) {
			if e.reachable[producer.ID] {
				seeds = append(seeds, producer.ID)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoProducer, target.Path)
		}
	}
	include := e.ancestorClosure(seeds)

	partition := targets[0].Partition
	ectx := NewExecContext(e.graph, options.initial)
	log.Debugf("materializing %d target(s) via %d of %d nodes, execution %s",
		len(targets), len(include), len(e.reachable), ectx.ExecutionID())

	fpOpts := FingerprintOptions{
		Partition:    partition,
		PartitionSet: options.partitionSet,
	}
	if err := e.run(ctx, ectx, include, fpOpts, nil); err != nil {
		return nil, err
	}

	versions := make([]*artifact.Version, len(targets))
	for i, target := range targets {
		version, err := e.registry.LatestVersion(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("resolve version of %s: %w", target, err)
		}
		if version == nil {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotProduced, target)
		}
		versions[i] = version
	}
	return versions, nil
}

// ancestorClosure returns the seed nodes plus every dependency ancestor,
// restricted to the reachable subgraph. The entry node is always included
// so scheduling has a root.
func (e *Executor) ancestorClosure(seeds []string) map[string]bool {
	closure := make(map[string]bool)
	queue := make([]string, 0, len(seeds))
	add := func(id string) {
		if e.reachable[id] && !closure[id] {
			closure[id] = true
			queue = append(queue, id)
		}
	}
	for _, id := range seeds {
		add(id)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range e.graph.InEdges(current) {
			add(edge.From)
		}
		for _, producer := range e.dataProducers[current] {
			add(producer)
		}
	}
	add(e.graph.EntryNodeID())
	return closure
}
