package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var errFakeConnClosed = errors.New("fake conn closed")

type fakeConn struct {
	inbound   chan Envelope
	outbound  chan Envelope
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan Envelope, 64),
		outbound: make(chan Envelope, 64),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadEnvelope() (Envelope, error) {
	select {
	case envelope := <-c.inbound:
		return envelope, nil
	case <-c.closed:
		return Envelope{}, errFakeConnClosed
	}
}

func (c *fakeConn) WriteEnvelope(envelope Envelope) error {
	select {
	case c.outbound <- envelope:
		return nil
	case <-c.closed:
		return ErrConnClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	envelope, err := NewEnvelope(event, payload)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	c.inbound <- envelope
}

func (c *fakeConn) waitOutbound(t *testing.T) Envelope {
	t.Helper()
	select {
	case envelope := <-c.outbound:
		return envelope
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected outbound envelope within deadline")
		return Envelope{}
	}
}

type fakeDialer struct {
	mu        sync.Mutex
	dialCount int
	conns     []*fakeConn
	sids      []string
	dialErr   error
}

func (d *fakeDialer) Dial(ctx context.Context, rawURL, token string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	conn := newFakeConn()
	d.dialCount++
	sid := fmt.Sprintf("sid-%d", d.dialCount)
	if len(d.sids) >= d.dialCount {
		sid = d.sids[d.dialCount-1]
	}
	ack, err := json.Marshal(ConnectedEvent{SID: sid})
	if err != nil {
		return nil, err
	}
	conn.inbound <- Envelope{Event: EventConnected, Data: ack}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialCount
}

func (d *fakeDialer) conn(index int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[index]
}

func mustSession(t *testing.T, dialer Dialer) *Session {
	t.Helper()
	session, err := NewSession(SessionConfig{
		Dialer:           dialer,
		URL:              "ws://test.invalid/ws",
		HandshakeTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected session error: %v", err)
	}
	return session
}

func mustOpen(t *testing.T, session *Session, token string) {
	t.Helper()
	if err := session.Open(context.Background(), token); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
}

func mustJoin(t *testing.T, session *Session, workspaceID string) Room {
	t.Helper()
	room, err := session.Join(workspaceID)
	if err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}
	return room
}
