package api_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ua/api"
)

func TestTransportFeaturesStruct(t *testing.T) {
	f := api.TransportFeatures{Batch: true, Framed: false}
	if !f.Batch || f.Framed {
		t.Fatal("TransportFeatures fields not set correctly")
	}
}

func TestTransportInterfaceCompliance(t *testing.T) {
	var _ api.Transport = (*mockTransport)(nil)
	var _ api.Transport = (*api.MockTransport)(nil)
}

func TestMockTransportDefaults(t *testing.T) {
	m := &api.MockTransport{}
	require.NoError(t, m.Send([][]byte{{1}}))
	frames, err := m.Recv()
	require.NoError(t, err)
	assert.Empty(t, frames)
	assert.Equal(t, "mock", m.Features().Name)

	boom := errors.New("boom")
	m.SendFunc = func([][]byte) error { return boom }
	assert.ErrorIs(t, m.Send(nil), boom)
}

// mockTransport implements api.Transport for interface checks.
type mockTransport struct{}

func (*mockTransport) Send([][]byte) error             { return nil }
func (*mockTransport) Recv() ([][]byte, error)         { return nil, nil }
func (*mockTransport) Close() error                    { return nil }
func (*mockTransport) Features() api.TransportFeatures { return api.TransportFeatures{} }
