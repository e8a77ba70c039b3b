// File: internal/concurrency/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Batch collects work discovered under a lock so it can be run after the
// lock is released. Not safe for concurrent use; each processing step owns
// its own Batch.

package concurrency

import "github.com/eapache/queue"

// Batch is a FIFO of pending items backed by a growable ring queue.
type Batch[T any] struct {
	q *queue.Queue
}

// NewBatch creates an empty batch.
func NewBatch[T any]() *Batch[T] {
	return &Batch[T]{q: queue.New()}
}

// Push appends item.
func (b *Batch[T]) Push(item T) {
	b.q.Add(item)
}

// Pop removes the oldest item.
func (b *Batch[T]) Pop() (T, bool) {
	if b.q.Length() == 0 {
		var zero T
		return zero, false
	}
	return b.q.Remove().(T), true
}

// Len returns the number of queued items.
func (b *Batch[T]) Len() int {
	return b.q.Length()
}

// Run pops every item in FIFO order and hands it to fn. Items pushed by fn
// while running are processed in the same call.
func (b *Batch[T]) Run(fn func(T)) int {
	n := 0
	for {
		item, ok := b.Pop()
		if !ok {
			return n
		}
		fn(item)
		n++
	}
}
