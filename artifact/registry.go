//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"context"
)

// Registry defines the interface for artifact version storage.
//
// A registry may hold versions from multiple candidate producers of the same
// key. Resolution is deterministic: the latest version per key+partition is
// the one with the highest registration sequence, so concurrent executions
// that register versions of the same key always agree on the winner.
//
// Implementations must be safe for concurrent use: the registry is shared
// and mutated by multiple in-flight graph executions.
type Registry interface {
	// RegisterVersion records a new version of the artifact addressed by key.
	// The registry assigns the version's Sequence.
	RegisterVersion(ctx context.Context, key Key, version *Version) error

	// LatestVersion returns the most recently registered version for the key,
	// or nil if no version has been registered.
	LatestVersion(ctx context.Context, key Key) (*Version, error)

	// ListVersions returns all registered versions for the key in
	// registration order.
	ListVersions(ctx context.Context, key Key) ([]*Version, error)
}
