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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateClone(t *testing.T) {
	original := State{"a": 1, "b": "x"}
	clone := original.Clone()
	clone["a"] = 2
	clone["c"] = true

	assert.Equal(t, 1, original["a"])
	_, exists := original["c"]
	assert.False(t, exists)
}

func TestMergeStatesLaterWins(t *testing.T) {
	merged := mergeStates(
		State{"a": 1, "shared": "first"},
		State{"b": 2, "shared": "second"},
	)
	assert.Equal(t, State{"a": 1, "b": 2, "shared": "second"}, merged)
}

func TestContribution(t *testing.T) {
	assert.Equal(t, State{}, contribution("n", nil))
	assert.Equal(t, State{"k": 1}, contribution("n", State{"k": 1}))
	assert.Equal(t, State{"k": 1}, contribution("n", map[string]any{"k": 1}))
	assert.Equal(t, State{"n": 42}, contribution("n", 42),
		"scalar results contribute under the node id")
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()

	noop := HandlerFunc(func(ctx context.Context, inv *Invocation) (any, error) {
		return "ok", nil
	})
	require.NoError(t, registry.Register("worker", noop))

	assert.Error(t, registry.Register("", noop))
	assert.Error(t, registry.Register("nilhandler", nil))
	assert.Error(t, registry.Register("worker", noop), "duplicate registration")

	handler, ok := registry.Handler("worker")
	require.True(t, ok)
	result, err := handler.Invoke(context.Background(), &Invocation{NodeID: "n"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	_, ok = registry.Handler("missing")
	assert.False(t, ok)
}

func TestExecContextDefaults(t *testing.T) {
	g := validGraph()
	ectx := NewExecContext(g, State{"seed": 1})

	assert.NotEmpty(t, ectx.ExecutionID())
	assert.Equal(t, g, ectx.Graph())
	assert.Nil(t, ectx.FinalState())
	assert.Empty(t, ectx.CompletedNodes())

	withID := NewExecContext(g, nil, WithExecutionID("fixed"))
	assert.Equal(t, "fixed", withID.ExecutionID())
}

func TestExecContextInitialStateIsCopied(t *testing.T) {
	seed := State{"k": "v"}
	ectx := NewExecContext(validGraph(), seed)

	got := ectx.InitialState()
	got["k"] = "mutated"
	assert.Equal(t, "v", ectx.InitialState()["k"])
}
