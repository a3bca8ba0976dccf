// Package tasks is the post-commit queue for fire-and-forget side effects
// (notification emails, socket emits). Handlers enqueue only after the
// document write has committed; delivery failures are logged, never surfaced.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Queue struct {
	ch      chan Task
	logger  *zap.SugaredLogger
	limiter *rate.Limiter
	wg      sync.WaitGroup
	once    sync.Once
}

// NewQueue starts one worker goroutine draining the queue, paced at 10
// tasks/second so a burst of uploads cannot flood the email provider.
func NewQueue(size int, logger *zap.SugaredLogger) *Queue {
	if size <= 0 {
		size = 256
	}
	q := &Queue{
		ch:      make(chan Task, size),
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Enqueue queues a task, dropping it (with a log line) when the queue is
// full. Side effects are best effort by contract.
func (q *Queue) Enqueue(name string, run func(ctx context.Context) error) {
	select {
	case q.ch <- Task{Name: name, Run: run}:
	default:
		q.logger.Warnw("task queue full, dropping task", "task", name)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for task := range q.ch {
		_ = q.limiter.Wait(context.Background())
		q.runOne(task)
	}
}

func (q *Queue) runOne(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Errorw("task panicked", "task", task.Name, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := task.Run(ctx); err != nil {
		q.logger.Warnw("task failed", "task", task.Name, "error", err)
	}
}

// Close stops accepting tasks and drains the queue.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.ch)
	})
	q.wg.Wait()
}
