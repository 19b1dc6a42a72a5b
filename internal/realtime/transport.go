package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed indicates a write against a connection whose pump has stopped.
var ErrConnClosed = errors.New("realtime: connection closed")

const sendBufferSize = 256

// Conn is a single live realtime connection carrying envelopes in both
// directions. Writes are serialized internally; reads must come from one
// goroutine.
type Conn interface {
	ReadEnvelope() (Envelope, error)
	WriteEnvelope(envelope Envelope) error
	Close() error
}

// Dialer establishes realtime connections. The websocket implementation is
// the production transport; tests substitute in-memory fakes.
type Dialer interface {
	Dial(ctx context.Context, rawURL, token string) (Conn, error)
}

// WebsocketDialer dials the backend realtime endpoint over a websocket,
// presenting the bearer token during the upgrade handshake.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

// Dial opens the websocket and starts the write pump.
func (d WebsocketDialer) Dial(ctx context.Context, rawURL, token string) (Conn, error) {
	endpoint, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	socket, response, err := dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		return nil, err
	}
	if response != nil && response.Body != nil {
		response.Body.Close()
	}

	conn := &websocketConn{
		socket: socket,
		send:   make(chan Envelope, sendBufferSize),
		done:   make(chan struct{}),
	}
	go conn.writePump()
	return conn, nil
}

type websocketConn struct {
	socket *websocket.Conn
	send   chan Envelope
	done   chan struct{}
}

func (c *websocketConn) ReadEnvelope() (Envelope, error) {
	var envelope Envelope
	if err := c.socket.ReadJSON(&envelope); err != nil {
		return Envelope{}, err
	}
	return envelope, nil
}

func (c *websocketConn) WriteEnvelope(envelope Envelope) error {
	select {
	case c.send <- envelope:
		return nil
	case <-c.done:
		return ErrConnClosed
	}
}

// writePump drains the send channel onto the socket so that concurrent
// callers never write to the websocket directly.
func (c *websocketConn) writePump() {
	defer c.socket.Close()
	for {
		select {
		case envelope := <-c.send:
			if err := c.socket.WriteJSON(envelope); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *websocketConn) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	return c.socket.Close()
}
