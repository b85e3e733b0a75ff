//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

package graph_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-graph-go/graph"
	cacheinmemory "trpc.group/trpc-go/trpc-graph-go/graph/cache/inmemory"
)

func noopHandlers(t *testing.T, names ...string) *graph.HandlerRegistry {
	t.Helper()
	handlers := graph.NewHandlerRegistry()
	for _, name := range names {
		require.NoError(t, handlers.RegisterFunc(name,
			func(ctx context.Context, inv *graph.Invocation) (any, error) {
				return nil, nil
			}))
	}
	return handlers
}

func TestExecuteLinearChain(t *testing.T) {
	const chainLen = 100

	b := graph.NewBuilder("chain").AddStartNode("start")
	prev := "start"
	for i := 0; i < chainLen; i++ {
		id := fmt.Sprintf("step-%03d", i)
		b.AddHandlerNode(id, "increment").AddEdge(prev, id)
		prev = id
	}
	g, err := b.AddEndNode("end").AddEdge(prev, "end").Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("increment",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			count, _ := inv.State["count"].(int)
			return graph.State{"count": count + 1}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, graph.State{"count": 0})
	require.NoError(t, exec.Execute(context.Background(), ectx))

	final := ectx.FinalState()
	require.NotNil(t, final)
	assert.Equal(t, chainLen, final["count"])
	assert.Len(t, ectx.CompletedNodes(), chainLen+2)
}

func TestExecuteFanOutRunsInParallel(t *testing.T) {
	const width = 100
	const sleep = 20 * time.Millisecond

	b := graph.NewBuilder("wide").
		AddStartNode("start").
		AddFanoutNode("fanout").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "fanout").
		AddEdge("join", "end")
	for i := 0; i < width; i++ {
		id := fmt.Sprintf("branch-%03d", i)
		b.AddHandlerNode(id, "sleeper", graph.WithNodeConfig(map[string]any{"index": i})).
			AddEdge("fanout", id).
			AddEdge(id, "join")
	}
	g, err := b.Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("sleeper",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			time.Sleep(sleep)
			return graph.State{inv.NodeID: "done"}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	begin := time.Now()
	require.NoError(t, exec.Execute(context.Background(), ectx))
	elapsed := time.Since(begin)

	// Sequential execution would take width*sleep = 2s.
	assert.Less(t, elapsed, width*sleep/2, "independent branches must overlap")

	final := ectx.FinalState()
	require.NotNil(t, final)
	for i := 0; i < width; i++ {
		assert.Equal(t, "done", final[fmt.Sprintf("branch-%03d", i)])
	}
}

func TestExecuteMaxConcurrentNodes(t *testing.T) {
	const width = 16

	b := graph.NewBuilder("bounded").
		AddStartNode("start").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("join", "end")
	for i := 0; i < width; i++ {
		id := fmt.Sprintf("w%02d", i)
		b.AddHandlerNode(id, "tracked").AddEdge("start", id).AddEdge(id, "join")
	}
	g, err := b.Build()
	require.NoError(t, err)

	var inFlight, peak int64
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("tracked",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			current := atomic.AddInt64(&inFlight, 1)
			for {
				observed := atomic.LoadInt64(&peak)
				if current <= observed || atomic.CompareAndSwapInt64(&peak, observed, current) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return nil, nil
		}))

	exec, err := graph.NewExecutor(g, handlers, graph.WithMaxConcurrentNodes(3))
	require.NoError(t, err)
	require.NoError(t, exec.Execute(context.Background(), graph.NewExecContext(g, nil)))

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(3))
}

func TestExecuteFanInMergesDeterministically(t *testing.T) {
	g, err := graph.NewBuilder("merge").
		AddStartNode("start").
		AddHandlerNode("b1", "writer1").
		AddHandlerNode("b2", "writer2").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "b1").
		AddEdge("start", "b2").
		AddEdge("b1", "join").
		AddEdge("b2", "join").
		AddEdge("join", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("writer1",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"shared": "from-b1", "only1": 1}, nil
		}))
	require.NoError(t, handlers.RegisterFunc("writer2",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"shared": "from-b2", "only2": 2}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	// The merge must be deterministic run over run.
	for i := 0; i < 5; i++ {
		ectx := graph.NewExecContext(g, nil)
		require.NoError(t, exec.Execute(context.Background(), ectx))

		final := ectx.FinalState()
		require.NotNil(t, final)
		assert.Equal(t, "from-b2", final["shared"], "predecessors merge in sorted id order")
		assert.Equal(t, 1, final["only1"])
		assert.Equal(t, 2, final["only2"])

		// Each branch's full output remains addressable even where the
		// merged state resolved an overlap against it.
		r1, ok := ectx.NodeResult("b1")
		require.True(t, ok)
		assert.Equal(t, graph.State{"shared": "from-b1", "only1": 1}, r1)
	}
}

func TestExecuteConditionalRouting(t *testing.T) {
	g, err := graph.NewBuilder("router").
		AddStartNode("start").
		AddHandlerNode("route", "router").
		AddHandlerNode("fast", "mark").
		AddHandlerNode("slow", "mark").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "route").
		AddConditionalEdge("route", "fast", "lane", "fast").
		AddDefaultEdge("route", "slow").
		AddEdge("fast", "join").
		AddEdge("slow", "join").
		AddEdge("join", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("router",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"lane": "fast"}, nil
		}))
	require.NoError(t, handlers.RegisterFunc("mark",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"served-by": inv.NodeID}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), ectx))

	assert.True(t, ectx.Skipped("slow"), "default edge must not fire when a conditional matched")
	assert.False(t, ectx.Skipped("fast"))
	_, fastRan := ectx.NodeResult("fast")
	assert.True(t, fastRan)
	_, slowRan := ectx.NodeResult("slow")
	assert.False(t, slowRan)

	final := ectx.FinalState()
	require.NotNil(t, final)
	assert.Equal(t, "fast", final["served-by"])
}

func TestExecuteDefaultEdgeFires(t *testing.T) {
	g, err := graph.NewBuilder("router").
		AddStartNode("start").
		AddHandlerNode("route", "router").
		AddHandlerNode("fast", "mark").
		AddHandlerNode("slow", "mark").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "route").
		AddConditionalEdge("route", "fast", "lane", "fast").
		AddDefaultEdge("route", "slow").
		AddEdge("fast", "join").
		AddEdge("slow", "join").
		AddEdge("join", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("router",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"lane": "bulk"}, nil
		}))
	require.NoError(t, handlers.RegisterFunc("mark",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"served-by": inv.NodeID}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), ectx))

	assert.True(t, ectx.Skipped("fast"))
	assert.False(t, ectx.Skipped("slow"))
	assert.Equal(t, "slow", ectx.FinalState()["served-by"])
}

func TestExecuteMultipleMatchingConditionals(t *testing.T) {
	g, err := graph.NewBuilder("multi").
		AddStartNode("start").
		AddHandlerNode("route", "router").
		AddHandlerNode("audit", "mark").
		AddHandlerNode("archive", "mark").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "route").
		AddConditionalEdge("route", "audit", "class", "sensitive").
		AddConditionalEdge("route", "archive", "class", "sensitive").
		AddEdge("audit", "join").
		AddEdge("archive", "join").
		AddEdge("join", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("router",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"class": "sensitive"}, nil
		}))
	require.NoError(t, handlers.RegisterFunc("mark",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{inv.NodeID: true}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), ectx))

	assert.False(t, ectx.Skipped("audit"))
	assert.False(t, ectx.Skipped("archive"))
	final := ectx.FinalState()
	assert.Equal(t, true, final["audit"])
	assert.Equal(t, true, final["archive"])
}

func TestExecuteCacheIdempotence(t *testing.T) {
	g, err := graph.NewBuilder("cached").
		AddStartNode("start").
		AddHandlerNode("compute", "counter").
		AddEndNode("end").
		AddEdge("start", "compute").
		AddEdge("compute", "end").
		Build()
	require.NoError(t, err)

	var invocations int64
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("counter",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			atomic.AddInt64(&invocations, 1)
			return graph.State{"value": 42}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers, graph.WithNodeCache(cacheinmemory.NewCache()))
	require.NoError(t, err)

	first := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), first))
	assert.False(t, first.CacheHit("compute"))

	second := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), second))
	assert.True(t, second.CacheHit("compute"))
	// Cached payloads round-trip through serialization, so numeric types
	// normalize; compare by value.
	assert.EqualValues(t, 42, second.FinalState()["value"])

	assert.Equal(t, int64(1), atomic.LoadInt64(&invocations),
		"identical fingerprint must not recompute")
}

func TestExecuteFailureNotCached(t *testing.T) {
	g, err := graph.NewBuilder("flaky").
		AddStartNode("start").
		AddHandlerNode("unstable", "flaky").
		AddEndNode("end").
		AddEdge("start", "unstable").
		AddEdge("unstable", "end").
		Build()
	require.NoError(t, err)

	var attempts int64
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("flaky",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			if atomic.AddInt64(&attempts, 1) == 1 {
				return nil, errors.New("transient storage error")
			}
			return graph.State{"ok": true}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers, graph.WithNodeCache(cacheinmemory.NewCache()))
	require.NoError(t, err)

	err = exec.Execute(context.Background(), graph.NewExecContext(g, nil))
	require.Error(t, err)
	var nodeErr *graph.NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "unstable", nodeErr.NodeID)

	// The failed attempt must not have been cached: the retry re-invokes the
	// handler and succeeds.
	retry := graph.NewExecContext(g, nil)
	require.NoError(t, exec.Execute(context.Background(), retry))
	assert.False(t, retry.CacheHit("unstable"))
	assert.Equal(t, int64(2), atomic.LoadInt64(&attempts))
}

func TestExecuteFailureStopsDownstream(t *testing.T) {
	g, err := graph.NewBuilder("failing").
		AddStartNode("start").
		AddHandlerNode("first", "boom").
		AddHandlerNode("second", "never").
		AddEndNode("end").
		AddEdge("start", "first").
		AddEdge("first", "second").
		AddEdge("second", "end").
		Build()
	require.NoError(t, err)

	var downstreamRan int64
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("boom",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return nil, errors.New("boom")
		}))
	require.NoError(t, handlers.RegisterFunc("never",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			atomic.AddInt64(&downstreamRan, 1)
			return nil, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	err = exec.Execute(context.Background(), ectx)
	require.Error(t, err)
	assert.Equal(t, int64(0), atomic.LoadInt64(&downstreamRan))
	assert.Nil(t, ectx.FinalState())
}

func TestExecuteCancellation(t *testing.T) {
	g, err := graph.NewBuilder("cancelable").
		AddStartNode("start").
		AddHandlerNode("blocker", "block").
		AddEndNode("end").
		AddEdge("start", "blocker").
		AddEdge("blocker", "end").
		Build()
	require.NoError(t, err)

	started := make(chan struct{})
	var once sync.Once
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("block",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return nil, ctx.Err()
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	defer cancel()

	err = exec.Execute(ctx, graph.NewExecContext(g, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrExecutionCanceled),
		"cancellation must be distinguishable from handler failure, got: %v", err)
}

func TestConcurrentExecutionsAreIsolated(t *testing.T) {
	g, err := graph.NewBuilder("shared").
		AddStartNode("start").
		AddHandlerNode("echo", "echo").
		AddEndNode("end").
		AddEdge("start", "echo").
		AddEdge("echo", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("echo",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			time.Sleep(time.Millisecond)
			return graph.State{"echoed": inv.State["input"]}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	const runs = 10
	ectxs := make([]*graph.ExecContext, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		ectxs[i] = graph.NewExecContext(g, graph.State{"input": i})
		wg.Add(1)
		go func(ectx *graph.ExecContext) {
			defer wg.Done()
			assert.NoError(t, exec.Execute(context.Background(), ectx))
		}(ectxs[i])
	}
	wg.Wait()

	for i, ectx := range ectxs {
		final := ectx.FinalState()
		require.NotNil(t, final, "run %d", i)
		assert.Equal(t, i, final["echoed"], "run %d must see its own state", i)
	}
}

func TestConcurrentExecutionsCoalesceWithCache(t *testing.T) {
	g, err := graph.NewBuilder("coalesced").
		AddStartNode("start").
		AddHandlerNode("compute", "slow").
		AddEndNode("end").
		AddEdge("start", "compute").
		AddEdge("compute", "end").
		Build()
	require.NoError(t, err)

	var invocations int64
	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("slow",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			atomic.AddInt64(&invocations, 1)
			time.Sleep(50 * time.Millisecond)
			return graph.State{"value": "computed"}, nil
		}))

	exec, err := graph.NewExecutor(g, handlers, graph.WithNodeCache(cacheinmemory.NewCache()))
	require.NoError(t, err)

	const runs = 8
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ectx := graph.NewExecContext(g, nil)
			assert.NoError(t, exec.Execute(context.Background(), ectx))
			assert.Equal(t, "computed", ectx.FinalState()["value"])
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&invocations),
		"concurrent identical computations must coalesce")
}

func TestExecuteWithEvents(t *testing.T) {
	g, err := graph.NewBuilder("observed").
		AddStartNode("start").
		AddHandlerNode("route", "router").
		AddHandlerNode("taken", "noop").
		AddHandlerNode("nottaken", "noop").
		AddJoinNode("join").
		AddEndNode("end").
		AddEdge("start", "route").
		AddConditionalEdge("route", "taken", "go", "yes").
		AddDefaultEdge("route", "nottaken").
		AddEdge("taken", "join").
		AddEdge("nottaken", "join").
		AddEdge("join", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("router",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return graph.State{"go": "yes"}, nil
		}))
	require.NoError(t, handlers.RegisterFunc("noop",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return nil, nil
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	ectx := graph.NewExecContext(g, nil)
	events, err := exec.ExecuteWithEvents(context.Background(), ectx)
	require.NoError(t, err)

	byType := make(map[graph.ExecutionEventType][]*graph.ExecutionEvent)
	for evt := range events {
		assert.Equal(t, ectx.ExecutionID(), evt.ExecutionID)
		assert.False(t, evt.Timestamp.IsZero())
		byType[evt.Type] = append(byType[evt.Type], evt)
	}

	assert.Len(t, byType[graph.EventNodeComplete], 5, "start, route, taken, join, end")
	require.Len(t, byType[graph.EventNodeSkipped], 1)
	assert.Equal(t, "nottaken", byType[graph.EventNodeSkipped][0].NodeID)
	require.Len(t, byType[graph.EventGraphComplete], 1)
	assert.Empty(t, byType[graph.EventGraphError])
}

func TestExecuteWithEventsReportsFailure(t *testing.T) {
	g, err := graph.NewBuilder("observed-failure").
		AddStartNode("start").
		AddHandlerNode("boom", "boom").
		AddEndNode("end").
		AddEdge("start", "boom").
		AddEdge("boom", "end").
		Build()
	require.NoError(t, err)

	handlers := graph.NewHandlerRegistry()
	require.NoError(t, handlers.RegisterFunc("boom",
		func(ctx context.Context, inv *graph.Invocation) (any, error) {
			return nil, errors.New("exploded")
		}))

	exec, err := graph.NewExecutor(g, handlers)
	require.NoError(t, err)

	events, err := exec.ExecuteWithEvents(context.Background(), graph.NewExecContext(g, nil))
	require.NoError(t, err)

	var sawNodeError, sawGraphError bool
	for evt := range events {
		switch evt.Type {
		case graph.EventNodeError:
			sawNodeError = true
			assert.Equal(t, "boom", evt.NodeID)
			assert.Contains(t, evt.Err, "exploded")
		case graph.EventGraphError:
			sawGraphError = true
		}
	}
	assert.True(t, sawNodeError)
	assert.True(t, sawGraphError)
}

func TestNewExecutorRejectsUnknownHandler(t *testing.T) {
	g, err := graph.NewBuilder("g").
		AddStartNode("start").
		AddHandlerNode("h1", "unregistered").
		AddEndNode("end").
		AddEdge("start", "h1").
		AddEdge("h1", "end").
		Build()
	require.NoError(t, err)

	_, err = graph.NewExecutor(g, graph.NewHandlerRegistry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrHandlerNotFound))
}

func TestNewExecutorRejectsCycles(t *testing.T) {
	g := graph.NewBuilder("cyclic").
		AddStartNode("start").
		AddHandlerNode("a", "noop").
		AddHandlerNode("b", "noop").
		AddEndNode("end").
		AddEdge("start", "a").
		AddEdge("a", "b").
		AddEdge("b", "a").
		AddEdge("b", "end").
		BuildUnchecked()
	require.True(t, graph.Validate(g).IsValid, "cycles are a warning at validation time")

	_, err := graph.NewExecutor(g, noopHandlers(t, "noop"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCyclicGraph))
}

func TestNewExecutorRejectsSelfLoop(t *testing.T) {
	g := graph.NewBuilder("self").
		AddStartNode("start").
		AddHandlerNode("a", "noop").
		AddEndNode("end").
		AddEdge("start", "a").
		AddEdge("a", "a").
		AddEdge("a", "end").
		BuildUnchecked()

	_, err := graph.NewExecutor(g, noopHandlers(t, "noop"))
	assert.True(t, errors.Is(err, graph.ErrCyclicGraph))
}

func TestNewExecutorRejectsInvalidGraph(t *testing.T) {
	g := graph.NewBuilder("broken").AddHandlerNode("h", "noop").BuildUnchecked()
	_, err := graph.NewExecutor(g, noopHandlers(t, "noop"))
	assert.Error(t, err)
}

func TestNewExecutorIgnoresUnreachableHandlers(t *testing.T) {
	// "dead" references a handler nobody registered, but it has no path from
	// start; construction must still succeed.
	g := graph.NewBuilder("g").
		AddStartNode("start").
		AddHandlerNode("live", "noop").
		AddHandlerNode("dead", "unregistered").
		AddEndNode("end").
		AddEdge("start", "live").
		AddEdge("live", "end").
		AddEdge("dead", "end").
		BuildUnchecked()

	exec, err := graph.NewExecutor(g, noopHandlers(t, "noop"))
	require.NoError(t, err)
	require.NoError(t, exec.Execute(context.Background(), graph.NewExecContext(g, nil)))
}
