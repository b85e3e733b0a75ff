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
	"sort"
)

// State represents the context entries that flow through the graph. Each
// node receives a merged view of the states contributed by its upstream
// branches and may contribute new entries by returning a State (or plain
// map) from its handler.
type State map[string]any

// Clone creates a shallow copy of the state. Values are shared; keys are
// independent.
func (s State) Clone() State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// mergeStates merges the given states into a fresh State in the order
// provided. Later states win on overlapping keys; callers that need
// determinism must order the inputs deterministically.
func mergeStates(states ...State) State {
	merged := make(State)
	for _, s := range states {
		for k, v := range s {
			merged[k] = v
		}
	}
	return merged
}

// contribution converts a node result into the context entries it
// contributes downstream. Map-like results contribute their entries
// directly; any other result is contributed under the node's own id, so no
// branch output is ever silently dropped at a merge.
func contribution(nodeID string, result any) State {
	switch r := result.(type) {
	case nil:
		return State{}
	case State:
		return r
	case map[string]any:
		return State(r)
	default:
		return State{nodeID: r}
	}
}

// sortedKeys returns the keys of a string-keyed map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
