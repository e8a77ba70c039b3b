package client_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/client"
	"github.com/momentics/hioload-ua/codec/jsoncodec"
	"github.com/momentics/hioload-ua/control"
	"github.com/momentics/hioload-ua/fake"
	"github.com/momentics/hioload-ua/protocol"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type result struct {
	ID  uint32
	Out api.Outcome
}

// recorder collects request outcomes in callback order.
type recorder struct {
	mu      sync.Mutex
	results []result
}

func (r *recorder) cb(_ *client.Client, id uint32, out api.Outcome) {
	r.mu.Lock()
	r.results = append(r.results, result{ID: id, Out: out})
	r.mu.Unlock()
}

func (r *recorder) all() []result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]result, len(r.results))
	copy(out, r.results)
	return out
}

func (r *recorder) count(id uint32) int {
	n := 0
	for _, res := range r.all() {
		if res.ID == id {
			n++
		}
	}
	return n
}

type harness struct {
	t       *testing.T
	c       *client.Client
	srv     *fake.Server
	clk     *testingclock.FakeClock
	rec     *recorder
	metrics *control.Metrics
	states  []api.ChannelState
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newHarness(t *testing.T, mutate ...func(*client.Config)) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		srv:     fake.NewServer(jsoncodec.New()),
		clk:     testingclock.NewFakeClock(t0),
		rec:     &recorder{},
		metrics: control.NewMetrics("test", prometheus.NewRegistry()),
	}
	cfg := client.DefaultConfig()
	cfg.Name = "test"
	cfg.Codec = jsoncodec.New()
	cfg.Transport = h.srv.Transport()
	cfg.Clock = h.clk
	cfg.Logger = quietLogger()
	cfg.Metrics = h.metrics
	cfg.SecurityToken = protocol.ChannelSecurityToken{ChannelID: 1, TokenID: 1, RevisedLifetime: 600000}
	cfg.OnStateChange = func(_ *client.Client, st api.ChannelState, _ protocol.StatusCode) {
		h.states = append(h.states, st)
	}
	for _, m := range mutate {
		m(cfg)
	}
	c, err := client.New(cfg)
	require.NoError(t, err)
	h.c = c
	return h
}

// step delivers pending requests to the server and runs one client step.
func (h *harness) step() {
	h.t.Helper()
	_, err := h.srv.Pump()
	require.NoError(h.t, err)
	require.NoError(h.t, h.c.RunIterate(context.Background()))
}

func (h *harness) read(opts ...client.DispatchOption) uint32 {
	h.t.Helper()
	id, err := h.c.Dispatch(&protocol.ReadRequest{}, api.ShapeOf[*protocol.ReadResponse](), h.rec.cb, opts...)
	require.NoError(h.t, err)
	return id
}

func readResponse() *protocol.ReadResponse {
	return &protocol.ReadResponse{Results: []protocol.DataValue{{Value: 21.5}}}
}

func echoReads(h *harness) {
	h.srv.Handle("ReadRequest", fake.Echo(readResponse))
}
