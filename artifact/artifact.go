//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

// Package artifact provides the definition and registry contract for graph
// execution artifacts. An artifact is a logical, optionally partitioned
// output produced by a graph node; the registry tracks which node produced
// which version of each artifact.
package artifact

import (
	"fmt"
	"strings"
	"time"
)

// PartitionKey identifies one slice of a partitioned artifact as an ordered
// tuple of dimension values, for example one day of a daily metric.
type PartitionKey []string

// String returns the canonical representation of the partition key.
func (p PartitionKey) String() string {
	return strings.Join(p, "/")
}

// Equal reports whether two partition keys have the same dimension values
// in the same order.
func (p PartitionKey) Equal(other PartitionKey) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Key addresses an artifact by logical path plus optional partition.
// Two keys are equal iff both path and partition are equal.
type Key struct {
	// Path is the logical path of the artifact, e.g. "output/result".
	Path string
	// Partition identifies one slice of a partitioned artifact.
	// Empty for unpartitioned artifacts.
	Partition PartitionKey
}

// NewKey creates an unpartitioned artifact key.
func NewKey(path string) Key {
	return Key{Path: path}
}

// WithPartition returns a copy of the key addressing the given partition.
func (k Key) WithPartition(partition PartitionKey) Key {
	return Key{Path: k.Path, Partition: partition}
}

// Equal reports whether two keys address the same artifact slice.
func (k Key) Equal(other Key) bool {
	return k.Path == other.Path && k.Partition.Equal(other.Partition)
}

// String returns the canonical representation of the key, used as the
// storage key by registry implementations.
func (k Key) String() string {
	if len(k.Partition) == 0 {
		return k.Path
	}
	return fmt.Sprintf("%s@%s", k.Path, k.Partition)
}

// Version records one production of an artifact: which node produced it,
// under which fingerprint, and when.
type Version struct {
	// ID is the unique identifier of this version.
	ID string `json:"id"`
	// Key is the artifact slice this version belongs to.
	Key Key `json:"key"`
	// ProducingNodeID is the id of the graph node that produced this version.
	ProducingNodeID string `json:"producing_node_id"`
	// Fingerprint is the fingerprint of the producing node execution.
	Fingerprint string `json:"fingerprint,omitempty"`
	// Sequence is a registry-wide monotonic counter assigned at registration.
	// The latest version of a key is the one with the highest sequence.
	Sequence uint64 `json:"sequence"`
	// CreatedAt is when the version was registered.
	CreatedAt time.Time `json:"created_at"`
}
