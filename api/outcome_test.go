package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

func TestOutcomeErr(t *testing.T) {
	assert.NoError(t, api.Success(&protocol.ReadResponse{}).Err())

	err := api.TimedOut().Err()
	assert.ErrorIs(t, err, protocol.StatusBadTimeout)
	assert.Contains(t, err.Error(), "operation timed out")

	assert.ErrorIs(t, api.ShuttingDown().Err(), protocol.StatusBadShutdown)
}

func TestShapeMatching(t *testing.T) {
	shape := api.ShapeOf[*protocol.ReadResponse]()
	assert.Equal(t, "ReadResponse", shape.Name())
	assert.True(t, shape.Matches(&protocol.ReadResponse{}))
	assert.False(t, shape.Matches(&protocol.WriteResponse{}))
	assert.False(t, shape.Matches(nil))

	assert.True(t, api.AnyResponse.Matches(&protocol.CancelResponse{}))
	assert.False(t, api.AnyResponse.Matches(nil))
}

func TestShapeMismatchOutcome(t *testing.T) {
	out := api.ShapeMismatch("ReadResponse", &protocol.WriteResponse{})
	assert.Equal(t, api.OutcomeShapeMismatch, out.Kind)
	assert.Equal(t, protocol.StatusBadTypeMismatch, out.Status)
	assert.Nil(t, out.Response)
	assert.Equal(t, "expected ReadResponse, got WriteResponse", out.Message)
}

func TestServerFailureCarriesServiceResult(t *testing.T) {
	resp := &protocol.ServiceFault{}
	resp.Header.ServiceResult = protocol.StatusBadNotFound
	out := api.ServerFailure(resp)
	assert.Equal(t, protocol.StatusBadNotFound, out.Status)
	assert.Same(t, resp, out.Response)
}

func TestRenewOutcomeStatus(t *testing.T) {
	assert.Equal(t, protocol.StatusGoodCallAgain, api.RenewNotDue.Status())
	assert.Equal(t, protocol.StatusGood, api.RenewInitiated.Status())
	assert.Equal(t, "in_flight", api.RenewInFlight.String())
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, api.ErrCodeOK, api.CodeOf(nil))
	assert.Equal(t, api.ErrCodeShutDown, api.CodeOf(fmt.Errorf("dispatch: %w", api.ErrClientShutDown)))
	assert.Equal(t, api.ErrCodeInternal, api.CodeOf(errors.New("other")))

	cause := errors.New("broken pipe")
	err := api.Wrap(api.ErrCodeTransport, cause, "send failed").WithContext("requestId", 3)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, api.ErrCodeTransport, api.CodeOf(err))
	assert.Contains(t, err.Error(), "broken pipe")
}
