// File: internal/concurrency/ring.go
// Package concurrency implements lock-free ring buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RingBuffer is a bounded single-producer/single-consumer circular buffer
// with atomic head/tail, padded to prevent false sharing. Transports use it
// to hand received frames from their reader goroutine to the processing step.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/hioload-ua/api"
)

// Ensure compile-time interface compliance.
var _ api.Ring[any] = (*RingBuffer[any])(nil)

// RingBuffer is a lock-free ring buffer (single-producer, single-consumer safe).
type RingBuffer[T any] struct {
	data    []T
	mask    uint64
	head    atomic.Uint64
	_       [64]byte // Padding for hot/cold separation
	tail    atomic.Uint64
	_       [64]byte // Padding to separate tail from other data
	dropped atomic.Uint64
}

// NewRingBuffer allocates a ring buffer, rounding size up to a power of two.
func NewRingBuffer[T any](size uint64) *RingBuffer[T] {
	if size < 2 {
		size = 2
	}
	if size&(size-1) != 0 {
		n := size - 1
		n |= n >> 1
		n |= n >> 2
		n |= n >> 4
		n |= n >> 8
		n |= n >> 16
		n |= n >> 32
		size = n + 1
	}
	return &RingBuffer[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Enqueue adds item; returns false and counts a drop if full.
func (r *RingBuffer[T]) Enqueue(item T) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail-head >= uint64(len(r.data)) {
		r.dropped.Add(1)
		return false
	}
	r.data[tail&r.mask] = item
	r.tail.Store(tail + 1)
	return true
}

// Dequeue removes and returns item; ok false if empty.
func (r *RingBuffer[T]) Dequeue() (T, bool) {
	var zero T
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		return zero, false
	}
	idx := head & r.mask
	item := r.data[idx]
	r.data[idx] = zero
	r.head.Store(head + 1)
	return item, true
}

// DrainTo dequeues up to max items (all if max <= 0) into dst.
func (r *RingBuffer[T]) DrainTo(dst []T, max int) []T {
	for max <= 0 || len(dst) < max {
		item, ok := r.Dequeue()
		if !ok {
			break
		}
		dst = append(dst, item)
	}
	return dst
}

// Len returns number of items currently in buffer.
func (r *RingBuffer[T]) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	return int(tail - head)
}

// Cap returns fixed buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}

// Dropped returns how many Enqueue calls failed on a full buffer.
func (r *RingBuffer[T]) Dropped() uint64 {
	return r.dropped.Load()
}
