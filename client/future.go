// File: client/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Futures for callers waiting on a goroutine other than the one driving
// RunIterate.

package client

import (
	"context"
	"sync"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// Future is completed exactly once with the result of a call.
type Future[T any] struct {
	ch     chan struct{}
	once   sync.Once
	result api.Result[T]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

// complete stores r; duplicate calls are ignored.
func (f *Future[T]) complete(r api.Result[T]) {
	f.once.Do(func() {
		f.result = r
		close(f.ch)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.ch
}

// Wait blocks until the future completes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.ch:
		return f.result.Unpack()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the result and whether it is available yet.
func (f *Future[T]) Result() (api.Result[T], bool) {
	select {
	case <-f.ch:
		return f.result, true
	default:
		return api.Result[T]{}, false
	}
}

// OnDone runs cb on its own goroutine once the future completes.
func (f *Future[T]) OnDone(cb func(api.Result[T])) {
	go func() {
		<-f.ch
		cb(f.result)
	}()
}

// CallFuture dispatches req and returns a future for its response. Failed
// outcomes complete the future with out.Err(), keeping any response.
func CallFuture[Req protocol.Request, Resp protocol.Response](c *Client, req Req, opts ...DispatchOption) (*Future[Resp], uint32, error) {
	f := newFuture[Resp]()
	id, err := Call[Req, Resp](c, req, func(_ *Client, _ uint32, resp Resp, out api.Outcome) {
		f.complete(api.Result[Resp]{Value: resp, Err: out.Err()})
	}, opts...)
	if err != nil {
		return nil, 0, err
	}
	return f, id, nil
}
