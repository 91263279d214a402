// Package memory provides a queue implementation for local use.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mbellgrove/linkweaver/internal/queue"
)

// Queue is a bounded in-memory queue with context-aware operations.
type Queue struct {
	ch      chan queue.Request
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan queue.Request, capacity),
	}
}

// Enqueue pushes a request into the queue or returns if the context ends.
func (q *Queue) Enqueue(ctx context.Context, request queue.Request) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- request:
		return nil
	}
}

// Dequeue pops the next request, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (queue.Request, error) {
	select {
	case <-ctx.Done():
		return queue.Request{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case request, ok := <-q.ch:
		if !ok {
			return queue.Request{}, errors.New("queue closed")
		}
		return request, nil
	}
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
