package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestQueueDeliversInOrder(t *testing.T) {
	q := NewQueue(16, zap.NewNop().Sugar())

	var got []int
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		i := i
		q.Enqueue("t", func(ctx context.Context) error {
			got = append(got, i)
			if i == 2 {
				close(done)
			}
			return nil
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks never ran")
	}
	q.Close()

	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("order = %v", got)
	}
}

func TestQueuePanicDoesNotKillWorker(t *testing.T) {
	q := NewQueue(16, zap.NewNop().Sugar())

	q.Enqueue("boom", func(ctx context.Context) error {
		panic("boom")
	})

	done := make(chan struct{})
	q.Enqueue("after", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker died after panic")
	}
	q.Close()
}

func TestQueueFailedTaskIsSwallowed(t *testing.T) {
	q := NewQueue(16, zap.NewNop().Sugar())

	var ran atomic.Int32
	q.Enqueue("fails", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("provider down")
	})
	q.Enqueue("next", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	q.Close()
	if ran.Load() != 2 {
		t.Fatalf("ran = %d, want 2", ran.Load())
	}
}

func TestCloseDrainsPending(t *testing.T) {
	q := NewQueue(64, zap.NewNop().Sugar())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		q.Enqueue("n", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	q.Close()
	if ran.Load() != 10 {
		t.Fatalf("drained %d of 10", ran.Load())
	}

	// Close is idempotent.
	q.Close()
}
