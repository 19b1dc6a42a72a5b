package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coscribe-labs/coscribe/internal/api"
	"github.com/coscribe-labs/coscribe/internal/realtime"
)

var errFakeConnClosed = errors.New("fake conn closed")

type fakeConn struct {
	inbound   chan realtime.Envelope
	outbound  chan realtime.Envelope
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan realtime.Envelope, 64),
		outbound: make(chan realtime.Envelope, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadEnvelope() (realtime.Envelope, error) {
	select {
	case envelope := <-c.inbound:
		return envelope, nil
	case <-c.closed:
		return realtime.Envelope{}, errFakeConnClosed
	}
}

func (c *fakeConn) WriteEnvelope(envelope realtime.Envelope) error {
	select {
	case c.outbound <- envelope:
		return nil
	case <-c.closed:
		return realtime.ErrConnClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	envelope, err := realtime.NewEnvelope(event, payload)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	c.inbound <- envelope
}

func (c *fakeConn) waitOutbound(t *testing.T) realtime.Envelope {
	t.Helper()
	select {
	case envelope := <-c.outbound:
		return envelope
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected outbound envelope within deadline")
		return realtime.Envelope{}
	}
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	sid   string
}

func (d *fakeDialer) Dial(ctx context.Context, rawURL, token string) (realtime.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := newFakeConn()
	sid := d.sid
	if sid == "" {
		sid = "sid-local"
	}
	ack, err := json.Marshal(realtime.ConnectedEvent{SID: sid})
	if err != nil {
		return nil, err
	}
	conn.inbound <- realtime.Envelope{Event: realtime.EventConnected, Data: ack}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) conn(index int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[index]
}

type testApp struct {
	app    *App
	dialer *fakeDialer
}

// newTestApp builds an app over a fake realtime transport and an httptest
// REST backend, connected and with workspace ws-1 open.
func newTestApp(t *testing.T, handler http.Handler) *testApp {
	t.Helper()
	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/me" {
				json.NewEncoder(w).Encode(api.User{ID: "user-1", Name: "Sol"})
				return
			}
			json.NewEncoder(w).Encode(api.Workspace{ID: "ws-1", Name: "Research"})
		})
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	apiClient, err := api.NewClient(api.ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected api client error: %v", err)
	}
	dialer := &fakeDialer{}
	session, err := realtime.NewSession(realtime.SessionConfig{
		Dialer:           dialer,
		URL:              "ws://test.invalid/ws",
		HandshakeTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected session error: %v", err)
	}
	app, err := NewApp(AppConfig{Session: session, API: apiClient})
	if err != nil {
		t.Fatalf("unexpected app error: %v", err)
	}
	t.Cleanup(app.Close)

	if err := app.Connect(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	if _, err := app.OpenWorkspace(context.Background(), "ws-1"); err != nil {
		t.Fatalf("unexpected open workspace error: %v", err)
	}
	// Consume the join_room frame so assertions see only the frames a test
	// provokes.
	dialer.conn(0).waitOutbound(t)
	return &testApp{app: app, dialer: dialer}
}

func (ta *testApp) conn() *fakeConn {
	return ta.dialer.conn(0)
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
