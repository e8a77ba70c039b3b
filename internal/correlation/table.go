// File: internal/correlation/table.go
// Package correlation
// Author: momentics <momentics@gmail.com>
//
// Thread-safe table of pending requests keyed by request id.

package correlation

import (
	"iter"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// Table maps request ids to pending records.
type Table struct {
	mu      sync.Mutex
	records map[uint32]*Record
	lastID  uint32
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{records: make(map[uint32]*Record)}
}

// Insert adds a record with a preassigned id.
func (t *Table) Insert(r *Record) error {
	if r == nil || r.ID == 0 {
		return api.ErrInvalidArgument
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.records[r.ID]; ok {
		return api.ErrDuplicateRequestID
	}
	t.records[r.ID] = r
	return nil
}

// Register assigns r the next free id and inserts it in one locked step.
// Ids come from a wrapping counter that skips zero and ids still in use.
func (t *Table) Register(r *Record) (uint32, error) {
	if r == nil {
		return 0, api.ErrInvalidArgument
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	// At most len+1 probes: a free id always exists among them.
	for probes := 0; probes <= len(t.records)+1; probes++ {
		t.lastID++
		if t.lastID == 0 {
			t.lastID = 1
		}
		if _, busy := t.records[t.lastID]; busy {
			continue
		}
		r.ID = t.lastID
		t.records[r.ID] = r
		return r.ID, nil
	}
	return 0, api.ErrDuplicateRequestID
}

// Remove deletes the record for id and moves it to state.
func (t *Table) Remove(id uint32, state api.RequestState) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[id]
	if !ok {
		return nil, false
	}
	delete(t.records, id)
	r.State = state
	return r, true
}

// Contains reports whether id is pending.
func (t *Table) Contains(id uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.records[id]
	return ok
}

// HandleOf returns the request handle of a pending id.
func (t *Table) HandleOf(id uint32) (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[id]
	if !ok {
		return 0, false
	}
	return r.Handle, true
}

// Len returns the number of pending records.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// RemoveExpired removes every Sent record whose deadline passed at now,
// marks it TimedOut and returns the batch ordered by deadline then id.
func (t *Table) RemoveExpired(now time.Time) []*Record {
	t.mu.Lock()
	var out []*Record
	for id, r := range t.records {
		if r.State != api.RequestSent || !r.Expired(now) {
			continue
		}
		delete(t.records, id)
		r.State = api.RequestTimedOut
		out = append(out, r)
	}
	t.mu.Unlock()
	sortRecords(out)
	return out
}

// RemoveAll empties the table, marking every record Cancelled.
func (t *Table) RemoveAll() []*Record {
	t.mu.Lock()
	out := make([]*Record, 0, len(t.records))
	for _, r := range t.records {
		r.State = api.RequestCancelled
		out = append(out, r)
	}
	t.records = make(map[uint32]*Record)
	t.mu.Unlock()
	sortRecords(out)
	return out
}

// Snapshot copies the pending records. Copies carry no callback.
func (t *Table) Snapshot() []Record {
	t.mu.Lock()
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		cp := *r
		cp.callback = nil
		out = append(out, cp)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All yields a fresh snapshot each time it is ranged over.
func (t *Table) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range t.Snapshot() {
			if !yield(r) {
				return
			}
		}
	}
}

// NextDeadline returns the earliest deadline among pending records.
func (t *Table) NextDeadline() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var best time.Time
	found := false
	for _, r := range t.records {
		if !found || r.Deadline.Before(best) {
			best, found = r.Deadline, true
		}
	}
	return best, found
}

func sortRecords(rs []*Record) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Deadline.Equal(rs[j].Deadline) {
			return rs[i].Deadline.Before(rs[j].Deadline)
		}
		return rs[i].ID < rs[j].ID
	})
}

// HandleSource hands out request handles above protocol.AutoHandleThreshold,
// wrapping back to the first value after MaxUint32.
type HandleSource struct {
	last atomic.Uint32
}

// Next returns a fresh automatic handle.
func (s *HandleSource) Next() uint32 {
	for {
		cur := s.last.Load()
		next := cur + 1
		if cur < protocol.AutoHandleThreshold || cur == math.MaxUint32 {
			next = protocol.AutoHandleThreshold + 1
		}
		if s.last.CompareAndSwap(cur, next) {
			return next
		}
	}
}
