package audio

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// ChunkQueue is a bounded FIFO of PCM chunks between a real-time
// capture callback and a network sender. Pushing never blocks: when
// the queue is full the chunk is dropped and counted. The capture
// thread must stay responsive, so completeness is traded for liveness.
type ChunkQueue struct {
	ch      chan []byte
	dropped atomic.Uint64
	logger  *slog.Logger
}

func NewChunkQueue(capacity int) *ChunkQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &ChunkQueue{
		ch:     make(chan []byte, capacity),
		logger: slog.Default().With(slog.String("component", "chunk_queue")),
	}
}

// TryPush copies p and enqueues the copy without blocking. It returns
// false when the queue is full and the chunk was dropped.
func (q *ChunkQueue) TryPush(p []byte) bool {
	data := make([]byte, len(p))
	copy(data, p)

	select {
	case q.ch <- data:
		return true
	default:
		n := q.dropped.Add(1)
		q.logger.Debug("queue full, chunk dropped",
			slog.Int("len", len(p)),
			slog.Uint64("dropped_total", n),
		)
		return false
	}
}

// Pop blocks until a chunk is available or ctx is done. Chunks come
// out in the exact order they were accepted.
func (q *ChunkQueue) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data := <-q.ch:
		return data, nil
	}
}

// Len returns the number of queued chunks.
func (q *ChunkQueue) Len() int {
	return len(q.ch)
}

// Dropped returns the number of chunks discarded due to overflow.
func (q *ChunkQueue) Dropped() uint64 {
	return q.dropped.Load()
}
