// File: transport/ws/transport.go
// Package ws
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WebSocket implementation of api.Transport. Each WebSocket message carries
// exactly one encoded service message. A reader goroutine moves received
// messages into a lock-free inbox that Recv drains without blocking.

package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/control"
	"github.com/momentics/hioload-ua/internal/concurrency"
)

var _ api.Transport = (*Transport)(nil)

// Options configures Dial.
type Options struct {
	Endpoint         string
	Subprotocol      string
	Header           http.Header
	InboxSize        int
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	UserTimeout      time.Duration // TCP_USER_TIMEOUT, honoured on linux
	Logger           *logrus.Entry
}

// OptionsFromConfig maps the file configuration onto dial options.
func OptionsFromConfig(cfg *control.Config) Options {
	return Options{
		Endpoint:         cfg.Endpoint,
		Subprotocol:      cfg.Transport.Subprotocol,
		InboxSize:        cfg.Transport.InboxSize,
		HandshakeTimeout: cfg.Transport.HandshakeTimeout,
		WriteTimeout:     cfg.Transport.WriteTimeout,
		UserTimeout:      cfg.Transport.UserTimeout,
	}
}

// Transport is a connected WebSocket link.
type Transport struct {
	conn     *websocket.Conn
	log      *logrus.Entry
	inbox    api.Ring[[]byte]
	features api.TransportFeatures
	wTimeout time.Duration

	writeMu sync.Mutex

	errMu   sync.Mutex
	readErr error

	done      chan struct{}
	readDone  chan struct{}
	closeOnce sync.Once
}

// Dial opens the WebSocket connection and starts the reader.
func Dial(ctx context.Context, opts Options) (*Transport, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("dial: empty endpoint: %w", api.ErrInvalidArgument)
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 1024
	}
	if opts.Logger == nil {
		opts.Logger = logrus.WithField("component", "ws-transport")
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
		NetDialContext:   netDialer(opts.UserTimeout).DialContext,
	}
	if opts.Subprotocol != "" {
		dialer.Subprotocols = []string{opts.Subprotocol}
	}

	conn, resp, err := dialer.DialContext(ctx, opts.Endpoint, opts.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.Endpoint, err)
	}

	t := newTransport(conn, opts)
	t.log.WithFields(logrus.Fields{
		"endpoint":    opts.Endpoint,
		"subprotocol": conn.Subprotocol(),
	}).Info("websocket connected")
	go t.readLoop()
	return t, nil
}

func newTransport(conn *websocket.Conn, opts Options) *Transport {
	return &Transport{
		conn:     conn,
		log:      opts.Logger,
		inbox:    concurrency.NewRingBuffer[[]byte](uint64(opts.InboxSize)),
		wTimeout: opts.WriteTimeout,
		features: api.TransportFeatures{
			Batch:  true,
			Framed: true,
			Secure: strings.HasPrefix(opts.Endpoint, "wss://"),
			Name:   "websocket",
		},
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

func netDialer(userTimeout time.Duration) *net.Dialer {
	d := &net.Dialer{KeepAlive: 30 * time.Second}
	if userTimeout > 0 {
		d.Control = socketControl(userTimeout)
	}
	return d
}

// Send writes each frame as one binary message.
func (t *Transport) Send(frames [][]byte) error {
	select {
	case <-t.done:
		return api.ErrTransportClosed
	default:
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	for _, f := range frames {
		if t.wTimeout > 0 {
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.wTimeout))
		}
		if err := t.conn.WriteMessage(websocket.BinaryMessage, f); err != nil {
			return fmt.Errorf("websocket write: %w", err)
		}
	}
	return nil
}

// Recv returns the messages received so far. Once the reader has stopped
// and the inbox is empty, the read error is returned.
func (t *Transport) Recv() ([][]byte, error) {
	frames := t.inbox.DrainTo(nil, 0)
	if len(frames) > 0 {
		return frames, nil
	}
	select {
	case <-t.readDone:
	default:
		return nil, nil
	}
	// A message may have landed between the drain and readDone.
	if frames = t.inbox.DrainTo(nil, 0); len(frames) > 0 {
		return frames, nil
	}
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return nil, t.readErr
}

// Close sends a close frame and releases the connection. Safe to call twice.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		t.writeMu.Unlock()
		err = t.conn.Close()
		<-t.readDone
	})
	return err
}

// Features implements api.Transport.
func (t *Transport) Features() api.TransportFeatures {
	return t.features
}

// Dropped counts how often the reader found the inbox full.
func (t *Transport) Dropped() uint64 {
	return t.inbox.Dropped()
}

func (t *Transport) readLoop() {
	defer close(t.readDone)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.setReadErr(err)
			return
		}
		// The inbox applies backpressure instead of losing responses.
		warned := false
		for !t.inbox.Enqueue(data) {
			if !warned {
				t.log.WithField("capacity", t.inbox.Cap()).Warn("transport inbox full, reader waiting")
				warned = true
			}
			select {
			case <-t.done:
				t.setReadErr(api.ErrTransportClosed)
				return
			case <-time.After(time.Millisecond):
			}
		}
	}
}

func (t *Transport) setReadErr(err error) {
	select {
	case <-t.done:
		err = api.ErrTransportClosed
	default:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			err = fmt.Errorf("peer closed connection: %w", api.ErrTransportClosed)
		} else if !errors.Is(err, api.ErrTransportClosed) {
			t.log.WithError(err).Warn("websocket read failed")
			err = fmt.Errorf("websocket read: %w", err)
		}
	}
	t.errMu.Lock()
	t.readErr = err
	t.errMu.Unlock()
}
