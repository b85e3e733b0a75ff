//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory implementation of the node result
// cache. It is suitable for testing and single-process deployments.
package inmemory

import (
	"container/list"
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-graph-go/graph"
)

// Cache is an in-memory implementation of graph.NodeCache. It is safe for
// concurrent use by multiple in-flight executions.
type Cache struct {
	mu      sync.RWMutex
	entries map[graph.Fingerprint]*list.Element
	// order tracks insertion order for oldest-first eviction.
	order      *list.List
	maxEntries int
}

type cacheItem struct {
	fp     graph.Fingerprint
	result *graph.CachedResult
}

// Option configures the cache.
type Option func(*Cache)

// WithMaxEntries bounds the cache size; the oldest entry is evicted when
// the bound is exceeded. Zero means unbounded.
func WithMaxEntries(max int) Option {
	return func(c *Cache) {
		c.maxEntries = max
	}
}

// NewCache creates a new in-memory node cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[graph.Fingerprint]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for a fingerprint, if present.
func (c *Cache) Get(ctx context.Context, fp graph.Fingerprint) (*graph.CachedResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	elem, ok := c.entries[fp]
	if !ok {
		return nil, false, nil
	}
	return elem.Value.(*cacheItem).result, true, nil
}

// Put stores a result under its fingerprint. Entries are never mutated: a
// second Put for the same fingerprint is a no-op, which preserves the
// at-most-once computation record for that fingerprint.
func (c *Cache) Put(ctx context.Context, fp graph.Fingerprint, result *graph.CachedResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[fp]; exists {
		return nil
	}
	c.entries[fp] = c.order.PushBack(&cacheItem{fp: fp, result: result})
	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheItem).fp)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
