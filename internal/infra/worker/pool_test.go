//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	t.Parallel()

	p := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	defer func() {
		cancel()
		p.Stop()
	}()

	var ran int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		err := p.Submit(func(context.Context) error {
			if atomic.AddInt32(&ran, 1) == 5 {
				close(done)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d of 5 tasks ran", atomic.LoadInt32(&ran))
	}
}

func TestPool_SubmitRejectsNil(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	if err := p.Submit(nil); err == nil {
		t.Fatal("expected an error for a nil task")
	}
}

func TestPool_SaturatedQueueReturnsErrQueueFull(t *testing.T) {
	t.Parallel()

	// Never started, so nothing drains the queue; capacity is workers*4.
	p := NewPool(1)
	blocked := func(context.Context) error { return nil }
	for i := 0; i < 4; i++ {
		if err := p.Submit(blocked); err != nil {
			t.Fatalf("fill %d: %v", i, err)
		}
	}
	if err := p.Submit(blocked); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPool_StopWaitsForWorkers(t *testing.T) {
	t.Parallel()

	p := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	var finished int32
	release := make(chan struct{})
	_ = p.Submit(func(context.Context) error {
		<-release
		atomic.StoreInt32(&finished, 1)
		return nil
	})

	// Give the worker time to pick the task up before stopping.
	time.Sleep(20 * time.Millisecond)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	cancel()
	p.Stop()

	if atomic.LoadInt32(&finished) != 1 {
		t.Fatal("Stop returned before the in-flight task finished")
	}
}
