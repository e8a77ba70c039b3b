// File: internal/correlation/record.go
// Package correlation
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package correlation

import (
	"time"

	"github.com/momentics/hioload-ua/api"
)

// Callback receives the single outcome of a request.
type Callback func(requestID uint32, out api.Outcome)

// Record is one pending request.
type Record struct {
	ID         uint32
	Handle     uint32
	Service    string
	Shape      api.ResponseShape
	Dispatched time.Time
	Deadline   time.Time
	State      api.RequestState

	callback Callback
}

// NewRecord builds a record in state Sent. The id is assigned on insertion.
func NewRecord(service string, handle uint32, shape api.ResponseShape, dispatched, deadline time.Time, cb Callback) *Record {
	return &Record{
		Handle:     handle,
		Service:    service,
		Shape:      shape,
		Dispatched: dispatched,
		Deadline:   deadline,
		State:      api.RequestSent,
		callback:   cb,
	}
}

// Expired reports whether the deadline has passed at now.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.Deadline)
}

// Fire hands out to the callback. The callback reference is dropped so a
// record can never complete twice.
func (r *Record) Fire(out api.Outcome) {
	cb := r.callback
	r.callback = nil
	if cb != nil {
		cb(r.ID, out)
	}
}
