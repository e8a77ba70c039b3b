// Package api
// Author: momentics
//
// Mock/testing utilities for core contracts.

package api

// MockTransport is a test and mock-friendly implementation of Transport.
// Nil funcs behave as a healthy, idle link.
type MockTransport struct {
	SendFunc     func([][]byte) error
	RecvFunc     func() ([][]byte, error)
	CloseFunc    func() error
	FeaturesFunc func() TransportFeatures
}

func (m *MockTransport) Send(b [][]byte) error {
	if m.SendFunc == nil {
		return nil
	}
	return m.SendFunc(b)
}

func (m *MockTransport) Recv() ([][]byte, error) {
	if m.RecvFunc == nil {
		return nil, nil
	}
	return m.RecvFunc()
}

func (m *MockTransport) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

func (m *MockTransport) Features() TransportFeatures {
	if m.FeaturesFunc == nil {
		return TransportFeatures{Name: "mock"}
	}
	return m.FeaturesFunc()
}
