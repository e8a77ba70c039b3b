package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/fake"
	"github.com/momentics/hioload-ua/protocol"
)

func TestReadAttributeAsync(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("ReadRequest", func(_ uint32, req protocol.Request) protocol.Response {
		rr := req.(*protocol.ReadRequest)
		resp := &protocol.ReadResponse{}
		for _, n := range rr.NodesToRead {
			if n.NodeID == "ns=2;s=Missing" {
				resp.Results = append(resp.Results, protocol.DataValue{Status: protocol.StatusBadNotFound})
				continue
			}
			resp.Results = append(resp.Results, protocol.DataValue{Value: n.NodeID})
		}
		return resp
	})

	var value protocol.DataValue
	var ok api.Outcome
	_, err := h.c.ReadValueAsync("ns=2;s=Temp", func(_ *client.Client, _ uint32, dv protocol.DataValue, out api.Outcome) {
		value, ok = dv, out
	})
	require.NoError(t, err)

	var missing api.Outcome
	_, err = h.c.ReadAttributeAsync("ns=2;s=Missing", protocol.AttributeValue, func(_ *client.Client, _ uint32, _ protocol.DataValue, out api.Outcome) {
		missing = out
	})
	require.NoError(t, err)
	h.step()

	assert.True(t, ok.OK())
	assert.Equal(t, "ns=2;s=Temp", value.Value)
	assert.Equal(t, api.OutcomeServerFailure, missing.Kind)
	assert.Equal(t, protocol.StatusBadNotFound, missing.Status)
}

func TestWriteAttributeAsyncChecksResultCount(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("WriteRequest", fake.Echo(func() *protocol.WriteResponse { return &protocol.WriteResponse{} }))

	var got api.Outcome
	_, err := h.c.WriteAttributeAsync("ns=2;s=SetPoint", protocol.AttributeValue, 42, func(_ *client.Client, _ uint32, out api.Outcome) {
		got = out
	})
	require.NoError(t, err)
	h.step()
	assert.Equal(t, api.OutcomeServerFailure, got.Kind)
	assert.Equal(t, protocol.StatusBadUnexpectedError, got.Status)

	written, _ := h.srv.Last("WriteRequest")
	wr := written.Request.(*protocol.WriteRequest)
	require.Len(t, wr.NodesToWrite, 1)
	assert.EqualValues(t, 42, wr.NodesToWrite[0].Value.Value)
}

func TestTypedCallsDeliverTypedResponses(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("BrowseRequest", fake.Echo(func() *protocol.BrowseResponse {
		return &protocol.BrowseResponse{Results: []protocol.BrowseResult{{References: []protocol.ReferenceDescription{{BrowseName: "Objects"}}}}}
	}))
	h.srv.Handle("CallRequest", fake.Echo(func() *protocol.CallResponse {
		return &protocol.CallResponse{Results: []protocol.CallMethodResult{{OutputArguments: []any{"done"}}}}
	}))
	h.srv.Handle("BrowseNextRequest", fake.Echo(func() *protocol.BrowseNextResponse { return &protocol.BrowseNextResponse{} }))
	h.srv.Handle("WriteRequest", fake.Echo(func() *protocol.WriteResponse {
		return &protocol.WriteResponse{Results: []protocol.StatusCode{protocol.StatusGood}}
	}))

	var browseName, output string
	var nextOK, writeOK bool
	_, err := h.c.BrowseAsync(&protocol.BrowseRequest{}, func(_ *client.Client, _ uint32, resp *protocol.BrowseResponse, out api.Outcome) {
		require.True(t, out.OK())
		browseName = resp.Results[0].References[0].BrowseName
	})
	require.NoError(t, err)
	_, err = h.c.CallMethodAsync(&protocol.CallRequest{}, func(_ *client.Client, _ uint32, resp *protocol.CallResponse, _ api.Outcome) {
		output = resp.Results[0].OutputArguments[0].(string)
	})
	require.NoError(t, err)
	_, err = h.c.BrowseNextAsync(&protocol.BrowseNextRequest{}, func(_ *client.Client, _ uint32, _ *protocol.BrowseNextResponse, out api.Outcome) {
		nextOK = out.OK()
	})
	require.NoError(t, err)
	_, err = h.c.WriteAttributeAsync("ns=1;i=5", protocol.AttributeValue, true, func(_ *client.Client, _ uint32, out api.Outcome) {
		writeOK = out.OK()
	})
	require.NoError(t, err)
	h.step()

	assert.Equal(t, "Objects", browseName)
	assert.Equal(t, "done", output)
	assert.True(t, nextOK)
	assert.True(t, writeOK)
}

func TestTypedCallKeepsResponseOnServerFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.Handle("ReadRequest", func(uint32, protocol.Request) protocol.Response {
		resp := readResponse()
		resp.Header.ServiceResult = protocol.StatusBadNotFound
		return resp
	})
	var got *protocol.ReadResponse
	_, err := h.c.ReadAsync(&protocol.ReadRequest{}, func(_ *client.Client, _ uint32, resp *protocol.ReadResponse, out api.Outcome) {
		assert.Equal(t, api.OutcomeServerFailure, out.Kind)
		got = resp
	})
	require.NoError(t, err)
	h.step()
	require.NotNil(t, got)
	assert.Len(t, got.Results, 1)
}

func TestCallFuture(t *testing.T) {
	h := newHarness(t)
	echoReads(h)

	fut, id, err := client.CallFuture[*protocol.ReadRequest, *protocol.ReadResponse](h.c, &protocol.ReadRequest{})
	require.NoError(t, err)
	assert.NotZero(t, id)
	_, ready := fut.Result()
	assert.False(t, ready)

	waited := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := fut.Wait(ctx)
		if err == nil && len(resp.Results) != 1 {
			err = assert.AnError
		}
		waited <- err
	}()

	h.step()
	require.NoError(t, <-waited)
	res, ready := fut.Result()
	assert.True(t, ready)
	assert.True(t, res.OK())

	notified := make(chan api.Result[*protocol.ReadResponse], 1)
	fut.OnDone(func(r api.Result[*protocol.ReadResponse]) { notified <- r })
	assert.NoError(t, (<-notified).Err)
}

func TestCallFutureFailure(t *testing.T) {
	h := newHarness(t)
	fut, _, err := client.CallFuture[*protocol.ReadRequest, *protocol.ReadResponse](h.c, &protocol.ReadRequest{}, client.WithTimeout(time.Second))
	require.NoError(t, err)

	h.clk.Step(time.Second)
	h.step()
	<-fut.Done()
	_, err = fut.Wait(context.Background())
	assert.ErrorIs(t, err, protocol.StatusBadTimeout)
}

func TestFutureWaitHonoursContext(t *testing.T) {
	h := newHarness(t)
	fut, _, err := client.CallFuture[*protocol.ReadRequest, *protocol.ReadResponse](h.c, &protocol.ReadRequest{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fut.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
