package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/protocol"
)

func manualRenew(cfg *client.Config) {
	cfg.AutoRenew = false
	cfg.SecurityToken.RevisedLifetime = 100000 // 100s
}

func renewingServer(h *harness, lifetime uint32) {
	h.srv.Handle("OpenSecureChannelRequest", func(_ uint32, req protocol.Request) protocol.Response {
		osc := req.(*protocol.OpenSecureChannelRequest)
		resp := &protocol.OpenSecureChannelResponse{}
		resp.Header.RequestHandle = osc.Header.RequestHandle
		resp.SecurityToken = protocol.ChannelSecurityToken{ChannelID: 1, TokenID: 2, RevisedLifetime: lifetime}
		return resp
	})
}

func countRenewals(h *harness) int {
	n := 0
	for _, r := range h.srv.Received() {
		if r.Request.TypeName() == "OpenSecureChannelRequest" {
			n++
		}
	}
	return n
}

func TestRenewNotDueBeforeThreeQuarters(t *testing.T) {
	h := newHarness(t, manualRenew)
	h.clk.Step(74 * time.Second)

	out, err := h.c.RenewSecureChannel()
	require.NoError(t, err)
	assert.Equal(t, api.RenewNotDue, out)
	assert.Equal(t, protocol.StatusGoodCallAgain, out.Status())
	_, err = h.srv.Pump()
	require.NoError(t, err)
	assert.Zero(t, countRenewals(h))
}

func TestRenewIsIdempotentWhileInFlight(t *testing.T) {
	h := newHarness(t, manualRenew)
	renewingServer(h, 200000)
	h.clk.Step(75 * time.Second)

	out, err := h.c.RenewSecureChannel()
	require.NoError(t, err)
	assert.Equal(t, api.RenewInitiated, out)
	assert.Equal(t, api.ChannelRenewing, h.c.ChannelState())

	for i := 0; i < 5; i++ {
		out, err = h.c.RenewSecureChannel()
		require.NoError(t, err)
		assert.Equal(t, api.RenewInFlight, out)
	}
	assert.NotZero(t, h.c.DumpState()["renewal.inflight"])
	_, err = h.srv.Pump()
	require.NoError(t, err)
	require.Equal(t, 1, countRenewals(h))

	got, _ := h.srv.Last("OpenSecureChannelRequest")
	osc := got.Request.(*protocol.OpenSecureChannelRequest)
	assert.Equal(t, protocol.TokenRenew, osc.RequestType)
	assert.EqualValues(t, 600000, osc.RequestedLifetime)

	require.NoError(t, h.c.RunIterate(context.Background()))
	assert.Equal(t, api.RenewalFresh, h.c.RenewalState())
	assert.Equal(t, api.ChannelOpen, h.c.ChannelState())
	assert.EqualValues(t, 2, h.c.SecurityToken().TokenID)
	assert.Equal(t, 200*time.Second, h.c.SecurityToken().Lifetime)
	assert.Equal(t, []api.ChannelState{api.ChannelRenewing, api.ChannelOpen}, h.states)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Renewals.WithLabelValues("renewed")))
	assert.Empty(t, h.rec.all(), "renewal fires no request callback")

	out, err = h.c.RenewSecureChannel()
	require.NoError(t, err)
	assert.Equal(t, api.RenewNotDue, out, "the new token starts a fresh window")
}

func TestAutoRenewFromRunIterate(t *testing.T) {
	h := newHarness(t)
	renewingServer(h, 600000)

	h.clk.Step(449 * time.Second)
	h.step()
	h.step()
	assert.Zero(t, countRenewals(h))

	h.clk.Step(time.Second)
	h.step() // sends the renewal
	h.step() // server answers, client installs the token
	assert.Equal(t, 1, countRenewals(h))
	assert.Equal(t, api.RenewalFresh, h.c.RenewalState())
	assert.EqualValues(t, 2, h.c.SecurityToken().TokenID)
}

func TestRenewalTimeoutFailsConnection(t *testing.T) {
	h := newHarness(t, manualRenew)
	h.clk.Step(80 * time.Second)
	out, err := h.c.RenewSecureChannel()
	require.NoError(t, err)
	require.Equal(t, api.RenewInitiated, out)

	h.clk.Step(5 * time.Second)
	h.step()
	assert.Equal(t, api.RenewalFailed, h.c.RenewalState())
	assert.Equal(t, api.ChannelFailed, h.c.ChannelState())
	assert.Equal(t, protocol.StatusBadTimeout, h.c.ConnectStatus())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Renewals.WithLabelValues("failed")))

	_, err = h.c.RenewSecureChannel()
	assert.ErrorIs(t, err, api.ErrConnectionFailed)
	_, err = h.c.Dispatch(&protocol.ReadRequest{}, nil, nil)
	assert.ErrorIs(t, err, api.ErrTransportUnavailable)
}

func TestRenewalRejectedByServer(t *testing.T) {
	h := newHarness(t, manualRenew)
	h.srv.Handle("OpenSecureChannelRequest", func(uint32, protocol.Request) protocol.Response {
		fault := &protocol.ServiceFault{}
		fault.Header.ServiceResult = protocol.StatusBadSecureChannelClosed
		return fault
	})
	h.clk.Step(time.Minute + 15*time.Second)
	_, err := h.c.RenewSecureChannel()
	require.NoError(t, err)
	h.step()
	assert.Equal(t, api.ChannelFailed, h.c.ChannelState())
	assert.Equal(t, protocol.StatusBadSecureChannelClosed, h.c.ConnectStatus())
}

func TestRenewalSendFailure(t *testing.T) {
	h := newHarness(t, manualRenew)
	h.clk.Step(90 * time.Second)
	h.srv.Transport().SetSendError(api.ErrTransportClosed)

	_, err := h.c.RenewSecureChannel()
	assert.ErrorIs(t, err, api.ErrTransportUnavailable)
	assert.Equal(t, api.RenewalFailed, h.c.RenewalState())
	assert.Equal(t, api.ChannelFailed, h.c.ChannelState())
}
