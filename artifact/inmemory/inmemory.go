//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory implementation of the artifact
// registry. It is suitable for testing and development environments.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// Registry is an in-memory implementation of artifact.Registry.
type Registry struct {
	mu       sync.RWMutex
	versions map[string][]*artifact.Version
	sequence uint64
}

// NewRegistry creates a new in-memory artifact registry.
func NewRegistry() *Registry {
	return &Registry{
		versions: make(map[string][]*artifact.Version),
	}
}

// RegisterVersion records a new version of the artifact addressed by key.
func (r *Registry) RegisterVersion(ctx context.Context, key artifact.Key, version *artifact.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := *version
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.Key = key
	r.sequence++
	v.Sequence = r.sequence

	path := key.String()
	r.versions[path] = append(r.versions[path], &v)
	return nil
}

// LatestVersion returns the most recently registered version for the key.
// Versions are appended under the registry lock, so the last element always
// carries the highest sequence.
func (r *Registry) LatestVersion(ctx context.Context, key artifact.Key) (*artifact.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.versions[key.String()]
	if len(versions) == 0 {
		return nil, nil
	}
	latest := *versions[len(versions)-1]
	return &latest, nil
}

// ListVersions returns all registered versions for the key in registration
// order.
func (r *Registry) ListVersions(ctx context.Context, key artifact.Key) ([]*artifact.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.versions[key.String()]
	result := make([]*artifact.Version, 0, len(versions))
	for _, v := range versions {
		copied := *v
		result = append(result, &copied)
	}
	return result, nil
}
