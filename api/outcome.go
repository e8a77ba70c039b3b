// File: api/outcome.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outcomes delivered exactly once to every dispatched request, and the
// response shape descriptors used to validate decoded payloads.

package api

import (
	"fmt"

	"github.com/momentics/hioload-ua/protocol"
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTimedOut
	OutcomeShuttingDown
	OutcomeShapeMismatch
	OutcomeServerFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeShuttingDown:
		return "shutting_down"
	case OutcomeShapeMismatch:
		return "shape_mismatch"
	case OutcomeServerFailure:
		return "server_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result delivered to a request callback. Response is set for
// OutcomeSuccess and, when the server sent one, OutcomeServerFailure.
type Outcome struct {
	Kind     OutcomeKind
	Status   protocol.StatusCode
	Response protocol.Response
	Message  string
}

// OK reports a successful outcome.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Err converts a failed outcome into an error wrapping its StatusCode.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return fmt.Errorf("%s: %w", o.Message, o.Status)
}

// Success wraps a matching response.
func Success(resp protocol.Response) Outcome {
	return Outcome{Kind: OutcomeSuccess, Status: protocol.StatusGood, Response: resp}
}

// TimedOut is delivered when a request deadline passes without a response.
func TimedOut() Outcome {
	return Outcome{Kind: OutcomeTimedOut, Status: protocol.StatusBadTimeout, Message: "operation timed out"}
}

// ShuttingDown is delivered to every request drained on client teardown.
func ShuttingDown() Outcome {
	return Outcome{Kind: OutcomeShuttingDown, Status: protocol.StatusBadShutdown, Message: "client shutting down"}
}

// ShapeMismatch is delivered when the decoded payload is not the expected type.
func ShapeMismatch(expected string, got protocol.Response) Outcome {
	name := "<nil>"
	if got != nil {
		name = got.TypeName()
	}
	return Outcome{
		Kind:    OutcomeShapeMismatch,
		Status:  protocol.StatusBadTypeMismatch,
		Message: fmt.Sprintf("expected %s, got %s", expected, name),
	}
}

// Undecodable is delivered when a response for the request arrived but its
// body could not be decoded.
func Undecodable(err error) Outcome {
	return Outcome{
		Kind:    OutcomeShapeMismatch,
		Status:  protocol.StatusBadDecodingError,
		Message: fmt.Sprintf("decode response: %v", err),
	}
}

// ServerFailure is delivered when the server reports a bad ServiceResult.
func ServerFailure(resp protocol.Response) Outcome {
	st := protocol.StatusBadInternalError
	if resp != nil {
		st = resp.ResponseHeader().ServiceResult
	}
	return Outcome{Kind: OutcomeServerFailure, Status: st, Response: resp, Message: "server reported failure"}
}

// ResponseShape describes the response type a request expects.
type ResponseShape interface {
	Name() string
	Matches(resp protocol.Response) bool
}

// Shape is the ResponseShape of the concrete response type T.
type Shape[T protocol.Response] struct{}

// ShapeOf returns the ResponseShape for T.
func ShapeOf[T protocol.Response]() ResponseShape { return Shape[T]{} }

func (Shape[T]) Name() string {
	var zero T
	return zero.TypeName()
}

func (Shape[T]) Matches(resp protocol.Response) bool {
	_, ok := resp.(T)
	return ok
}

// AnyResponse accepts every non-nil response.
var AnyResponse ResponseShape = anyShape{}

type anyShape struct{}

func (anyShape) Name() string                           { return "Response" }
func (anyShape) Matches(resp protocol.Response) bool { return resp != nil }
