//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory implementation of the checkpoint
// saver. This is suitable for testing and debugging but not for production
// use: manifests do not survive a process restart.
package inmemory

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"

	"trpc.group/trpc-go/trpc-graph-go/graph"
)

// Saver is an in-memory implementation of graph.CheckpointSaver.
type Saver struct {
	mu        sync.RWMutex
	manifests map[string][]byte
}

// NewSaver creates a new in-memory checkpoint saver.
func NewSaver() *Saver {
	return &Saver{
		manifests: make(map[string][]byte),
	}
}

// SaveManifest persists the manifest for an execution id, replacing any
// previous manifest for the same id. The manifest is stored serialized, so
// later mutations by the running execution cannot leak into saved state.
func (s *Saver) SaveManifest(ctx context.Context, executionID string, manifest *graph.Manifest) error {
	data, err := sonic.Marshal(manifest)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[executionID] = data
	return nil
}

// LoadManifest returns the manifest for an execution id, or nil when no
// manifest exists.
func (s *Saver) LoadManifest(ctx context.Context, executionID string) (*graph.Manifest, error) {
	s.mu.RLock()
	data, ok := s.manifests[executionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var manifest graph.Manifest
	if err := sonic.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// DeleteManifest removes the manifest for an execution id.
func (s *Saver) DeleteManifest(ctx context.Context, executionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.manifests, executionID)
	return nil
}
