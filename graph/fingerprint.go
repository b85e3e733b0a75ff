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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// Fingerprint is a deterministic content hash over a node's identity, its
// static configuration and the fingerprints of its upstream dependencies.
// It serves as the cache key and as the change-detection unit: changing any
// ancestor changes the fingerprints of all descendants.
type Fingerprint string

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string {
	return string(f)
}

// FingerprintOptions carries per-execution inputs that participate in a
// node's fingerprint beyond its static configuration.
type FingerprintOptions struct {
	// Partition is the partition currently being materialized, if any.
	// It is folded into the fingerprint of artifact-bound nodes so each
	// partition caches separately.
	Partition artifact.PartitionKey
	// PartitionSet is the full set of partitions requested by the current
	// materialization or backfill. Only nodes with SnapshotKeys fold it in.
	PartitionSet []artifact.PartitionKey
	// now supplies the timestamp for SnapshotAlwaysFresh nodes. Tests may
	// override it; nil means time.Now.
	now func() time.Time
}

// ComputeFingerprint computes the fingerprint of a node given the
// fingerprints of its upstream dependencies.
//
// The computation is deterministic and pure: identical configuration plus an
// identical set of upstream fingerprints always yields the identical string,
// across process restarts. Upstream fingerprints are combined sorted by
// dependency node id, so reordering unrelated graph edits does not spuriously
// change downstream fingerprints. The single exception to purity is
// SnapshotAlwaysFresh, which folds wall-clock time in and therefore
// recomputes on every run by design.
func ComputeFingerprint(node *Node, upstream map[string]Fingerprint, opts FingerprintOptions) Fingerprint {
	var b strings.Builder
	b.WriteString("node=")
	b.WriteString(node.ID)
	b.WriteString(";handler=")
	b.WriteString(node.HandlerName)
	b.WriteString(";config=")
	writeCanonical(&b, node.Config)

	if len(opts.Partition) > 0 && nodeArtifactBound(node) {
		b.WriteString(";partition=")
		b.WriteString(opts.Partition.String())
	}

	switch node.Snapshot {
	case SnapshotKeys:
		keys := make([]string, 0, len(opts.PartitionSet))
		for _, p := range opts.PartitionSet {
			keys = append(keys, p.String())
		}
		sort.Strings(keys)
		b.WriteString(";snapshot_keys=")
		b.WriteString(strings.Join(keys, ","))
	case SnapshotAlwaysFresh:
		now := time.Now
		if opts.now != nil {
			now = opts.now
		}
		fmt.Fprintf(&b, ";fresh=%d", now().UnixNano())
	}

	ids := make([]string, 0, len(upstream))
	for id := range upstream {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b.WriteString(";up:")
		b.WriteString(id)
		b.WriteString("=")
		b.WriteString(string(upstream[id]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// nodeArtifactBound reports whether the node produces or consumes artifacts,
// and therefore does partition-dependent work.
func nodeArtifactBound(node *Node) bool {
	return node.Produces != nil || len(node.Requires) > 0
}

// writeCanonical writes a stable serialization of a configuration value:
// map keys sorted, lists in order, primitives via fmt. Memory addresses and
// iteration order never leak into the output.
func writeCanonical(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(k)
			b.WriteString(":")
			writeCanonical(b, val[k])
		}
		b.WriteString("}")
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(k)
			b.WriteString(":")
			b.WriteString(val[k])
		}
		b.WriteString("}")
	case []any:
		b.WriteString("[")
		for i, item := range val {
			if i > 0 {
				b.WriteString(",")
			}
			writeCanonical(b, item)
		}
		b.WriteString("]")
	case []string:
		b.WriteString("[")
		for i, item := range val {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(item)
		}
		b.WriteString("]")
	case string:
		b.WriteString(val)
	default:
		fmt.Fprintf(b, "%v", val)
	}
}
