// File: api/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Ring is the single-producer, single-consumer frame queue between a
// transport's reader goroutine and the processing step.
type Ring[T any] interface {
	// Enqueue adds item; false when the ring is full.
	Enqueue(item T) bool
	// DrainTo appends up to max items (all when max <= 0) to dst.
	DrainTo(dst []T, max int) []T
	Len() int
	Cap() int
	// Dropped counts rejected enqueues.
	Dropped() uint64
}
