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
	"sync"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
)

// Invocation carries everything a handler receives for one node execution.
type Invocation struct {
	// NodeID is the id of the node being executed.
	NodeID string
	// ExecutionID is the id of the enclosing graph execution.
	ExecutionID string
	// State is the merged upstream context. The map is owned by the
	// invocation; handlers may read and mutate it freely.
	State State
	// Partition is the partition being materialized, if any.
	Partition artifact.PartitionKey
}

// NodeHandler is an opaque pluggable unit of work executed by handler nodes.
// The orchestrator does not know or care what a handler does internally;
// handlers that perform I/O should honor ctx cancellation.
type NodeHandler interface {
	Invoke(ctx context.Context, inv *Invocation) (any, error)
}

// HandlerFunc adapts a function to the NodeHandler interface.
type HandlerFunc func(ctx context.Context, inv *Invocation) (any, error)

// Invoke calls the function.
func (f HandlerFunc) Invoke(ctx context.Context, inv *Invocation) (any, error) {
	return f(ctx, inv)
}

// HandlerResolver resolves handler names to handler instances.
type HandlerResolver interface {
	Handler(name string) (NodeHandler, bool)
}

// HandlerRegistry is a string-keyed registry of node handlers. The executor
// resolves every handler name once at construction time, so registration
// must happen before NewExecutor.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]NodeHandler
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]NodeHandler),
	}
}

// Register registers a handler under the given name.
func (r *HandlerRegistry) Register(name string, handler NodeHandler) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler %s cannot be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler %s already registered", name)
	}
	r.handlers[name] = handler
	return nil
}

// RegisterFunc registers a plain function under the given name.
func (r *HandlerRegistry) RegisterFunc(name string, fn HandlerFunc) error {
	return r.Register(name, fn)
}

// Handler returns the handler registered under the given name.
func (r *HandlerRegistry) Handler(name string) (NodeHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}
