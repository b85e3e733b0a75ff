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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-graph-go/artifact"
	"trpc.group/trpc-go/trpc-graph-go/log"
)

// defaultMaxParallelPartitions bounds backfill parallelism when not
// configured otherwise.
const defaultMaxParallelPartitions = 4

// BackfillOption configures one backfill call.
type BackfillOption func(*backfillOptions)

type backfillOptions struct {
	maxParallel int
	initial     State
}

// WithPartitionParallelism overrides the executor's max-parallel-partitions
// bound for this backfill.
func WithPartitionParallelism(n int) BackfillOption {
	return func(o *backfillOptions) {
		o.maxParallel = n
	}
}

// WithBackfillState seeds each partition's execution context.
func WithBackfillState(initial State) BackfillOption {
	return func(o *backfillOptions) {
		o.initial = initial
	}
}

// Backfill materializes the target artifact across many partitions and
// streams progress: one started event, one completed event per partition,
// and one overall completed event with success/failure counts. A failing
// partition is reported individually and never aborts sibling partitions.
//
// Cancellation stops scheduling further partitions; partitions never
// attempted are counted as canceled on the final event. The returned
// channel is closed after the final event.
func (e *Executor) Backfill(ctx context.Context, target artifact.Key,
	partitions []artifact.PartitionKey, opts ...BackfillOption) (<-chan *BackfillEvent, error) {
	if e.registry == nil {
		return nil, ErrNoArtifactRegistry
	}
	options := backfillOptions{maxParallel: e.maxParallelPartitions}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxParallel <= 0 {
		return nil, fmt.Errorf("partition parallelism must be positive, got %d", options.maxParallel)
	}

	// Buffered for every event the run can emit, so emission never blocks
	// and a slow consumer cannot stall partition workers.
	events := make(chan *BackfillEvent, len(partitions)+2)
	go e.runBackfill(ctx, target, partitions, options, events)
	return events, nil
}

func (e *Executor) runBackfill(ctx context.Context, target artifact.Key,
	partitions []artifact.PartitionKey, options backfillOptions, events chan<- *BackfillEvent) {
	defer close(events)

	events <- &BackfillEvent{
		Type:            BackfillStarted,
		Target:          target,
		TotalPartitions: len(partitions),
		Timestamp:       time.Now().UTC(),
	}

	var (
		mu        sync.Mutex
		succeeded int
		failed    int
		canceled  int
	)

	pool, err := ants.NewPool(options.maxParallel)
	if err != nil {
		log.Errorf("backfill of %s: create partition pool: %v", target, err)
		failed = len(partitions)
	} else {
		defer pool.Release()
		var wg sync.WaitGroup
		for _, partition := range partitions {
			if ctx.Err() != nil {
				mu.Lock()
				canceled++
				mu.Unlock()
				continue
			}
			wg.Add(1)
			partition := partition
			submitErr := pool.Submit(func() {
				defer wg.Done()
				if ctx.Err() != nil {
					mu.Lock()
					canceled++
					mu.Unlock()
					return
				}
				version, err := e.Materialize(ctx, target.WithPartition(partition),
					WithInitialState(options.initial), WithPartitionSet(partitions))
				evt := &BackfillEvent{
					Type:      BackfillPartitionCompleted,
					Target:    target,
					Partition: partition,
					Timestamp: time.Now().UTC(),
				}
				mu.Lock()
				switch {
				case err != nil && errors.Is(err, ErrExecutionCanceled):
					canceled++
					mu.Unlock()
					return
				case err != nil:
					failed++
					evt.Err = err.Error()
				default:
					succeeded++
					evt.Success = true
					evt.Version = version
				}
				mu.Unlock()
				events <- evt
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				failed++
				mu.Unlock()
				log.Errorf("backfill of %s: submit partition %s: %v", target, partition, submitErr)
			}
		}
		wg.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	log.Infof("backfill of %s completed: %d succeeded, %d failed, %d canceled",
		target, succeeded, failed, canceled)
	events <- &BackfillEvent{
		Type:                BackfillCompleted,
		Target:              target,
		TotalPartitions:     len(partitions),
		SucceededPartitions: succeeded,
		FailedPartitions:    failed,
		CanceledPartitions:  canceled,
		Timestamp:           time.Now().UTC(),
	}
}
