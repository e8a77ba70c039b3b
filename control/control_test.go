package control_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ua/control"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: ws://plc.local:4840/ua
timeout: 2s
secureChannel:
  lifetime: 1m
logLevel: debug
`), 0o600))

	cfg, err := control.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://plc.local:4840/ua", cfg.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.SecureChannel.Lifetime)
	assert.Equal(t, 1024, cfg.Transport.InboxSize)
	assert.Equal(t, "hioload_ua", cfg.Metrics.Namespace)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	_, err := control.ParseConfig([]byte("secureChannel:\n  lifetime: 10ms\n"))
	assert.Error(t, err)

	_, err = control.ParseConfig([]byte("logLevel: chatty\n"))
	assert.Error(t, err)

	_, err = control.ParseConfig([]byte("timeout: [\n"))
	assert.Error(t, err)

	_, err = control.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := control.NewMetrics("test", reg)
	b := control.NewMetrics("test", reg)

	a.ObserveDispatch()
	b.ObserveDispatch()
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Dispatched))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Pending))

	a.ObserveCompletion("timed_out", 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Completed.WithLabelValues("timed_out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Pending))
}

func TestMetricsWithoutRegistry(t *testing.T) {
	m := control.NewMetrics("test", nil)
	m.ObserveDiscard()
	m.ObserveCancel()
	m.ObserveRenewal("renewed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Discarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CancelRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renewals.WithLabelValues("renewed")))
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("pending", func() any { return 3 })
	dp.RegisterProbe("broken", func() any { panic("boom") })

	state := dp.DumpState()
	assert.Equal(t, 3, state["pending"])
	assert.Equal(t, "probe panic: boom", state["broken"])
	assert.Equal(t, []string{"broken", "pending"}, dp.Names())
}
