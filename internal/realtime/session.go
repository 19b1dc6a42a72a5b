package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingDialer indicates a session constructed without a transport.
	ErrMissingDialer = errors.New("realtime: dialer is required")
	// ErrMissingURL indicates a session constructed without an endpoint.
	ErrMissingURL = errors.New("realtime: endpoint url is required")
	// ErrNotConnected indicates an emit against a closed session.
	ErrNotConnected = errors.New("realtime: not connected")
	// ErrHandshakeTimeout indicates the server never acknowledged the connection.
	ErrHandshakeTimeout = errors.New("realtime: handshake ack timed out")

	noOpLogger = zap.NewNop()
)

const defaultHandshakeTimeout = 10 * time.Second

// Handler consumes the raw payload of one inbound event. Handlers run on the
// session's single dispatch goroutine, in transport delivery order.
type Handler func(data json.RawMessage)

// SessionConfig describes the dependencies of a realtime session.
type SessionConfig struct {
	Dialer           Dialer
	URL              string
	Logger           *zap.Logger
	HandshakeTimeout time.Duration
	Clock            func() time.Time
}

// Session owns at most one live realtime connection. It is explicitly
// constructed and injectable; the embedding application shell decides its
// lifecycle through Open and Close.
type Session struct {
	dialer           Dialer
	url              string
	logger           *zap.Logger
	handshakeTimeout time.Duration
	clock            func() time.Time

	mu         sync.Mutex
	handlers   map[string][]Handler
	conn       Conn
	token      string
	sid        string
	generation int
}

// NewSession constructs a disconnected session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Dialer == nil {
		return nil, ErrMissingDialer
	}
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		dialer:           cfg.Dialer,
		url:              cfg.URL,
		logger:           logger,
		handshakeTimeout: timeout,
		clock:            clock,
		handlers:         make(map[string][]Handler),
	}, nil
}

// On registers a handler for the named inbound event. Multiple handlers per
// event fire in registration order.
func (s *Session) On(event string, handler Handler) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

// Open establishes the connection. Calling it again with the same token while
// connected is a no-op; a different token tears the old connection down first
// so rotated credentials take effect. Open returns once the server has
// acknowledged the connection with its id.
func (s *Session) Open(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.conn != nil {
		if s.token == token {
			s.mu.Unlock()
			return nil
		}
		s.teardownLocked()
	}
	s.mu.Unlock()

	s.inspectToken(token)

	conn, err := s.dialer.Dial(ctx, s.url, token)
	if err != nil {
		return fmt.Errorf("realtime: dial failed: %w", err)
	}

	ready := make(chan struct{})
	s.mu.Lock()
	s.conn = conn
	s.token = token
	s.sid = ""
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	go s.readLoop(conn, generation, ready)

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		s.Close()
		return ctx.Err()
	case <-time.After(s.handshakeTimeout):
		s.Close()
		return ErrHandshakeTimeout
	}
}

// Close tears down the connection and clears all session-scoped state. It is
// idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// SID returns the server-assigned connection identifier, or "" whenever
// disconnected. This id distinguishes the session's own echoes everywhere.
func (s *Session) SID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sid
}

// Connected reports whether a live, acknowledged connection exists.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.sid != ""
}

// Join requests membership in a workspace room and returns the handle every
// subsequent outbound operation goes through. The server treats joins as
// additive; switching rooms means discarding local state and joining anew.
func (s *Session) Join(workspaceID string) (Room, error) {
	if workspaceID == "" {
		return Room{}, fmt.Errorf("realtime: workspace id is required")
	}
	room := Room{session: s, workspaceID: workspaceID}
	if err := s.emit(EventJoinRoom, JoinRoomPayload{WorkspaceID: workspaceID}); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (s *Session) emit(event string, payload interface{ Validate() error }) error {
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("realtime: invalid %s payload: %w", event, err)
	}
	envelope, err := NewEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("realtime: encode %s: %w", event, err)
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteEnvelope(envelope)
}

func (s *Session) teardownLocked() {
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = nil
	s.token = ""
	s.sid = ""
}

func (s *Session) readLoop(conn Conn, generation int, ready chan struct{}) {
	acknowledged := false
	for {
		envelope, err := conn.ReadEnvelope()
		if err != nil {
			s.mu.Lock()
			if s.generation == generation {
				s.conn = nil
				s.sid = ""
			}
			s.mu.Unlock()
			s.logger.Debug("realtime connection closed", zap.Error(err))
			return
		}

		if envelope.Event == EventConnected {
			var ack ConnectedEvent
			if err := json.Unmarshal(envelope.Data, &ack); err != nil {
				s.logger.Warn("malformed connection ack", zap.Error(err))
			}
			if ack.SID == "" {
				ack.SID = uuid.NewString()
			}
			s.mu.Lock()
			if s.generation == generation {
				s.sid = ack.SID
			}
			s.mu.Unlock()
			if !acknowledged {
				acknowledged = true
				close(ready)
			}
			s.dispatch(envelope)
			continue
		}

		if envelope.Event == EventAuthError {
			var authErr AuthErrorEvent
			_ = json.Unmarshal(envelope.Data, &authErr)
			s.logger.Warn("realtime authentication failed", zap.String("message", authErr.Message))
		}

		s.dispatch(envelope)
	}
}

func (s *Session) dispatch(envelope Envelope) {
	s.mu.Lock()
	handlers := append([]Handler(nil), s.handlers[envelope.Event]...)
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(envelope.Data)
	}
}

// inspectToken decodes the bearer token without verifying it so that an
// already-expired credential is visible in logs before the handshake fails.
func (s *Session) inspectToken(token string) {
	if token == "" {
		return
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		s.logger.Debug("bearer token is not a parseable JWT", zap.Error(err))
		return
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(s.clock()) {
		s.logger.Warn("bearer token already expired",
			zap.Time("expired_at", claims.ExpiresAt.Time),
			zap.String("subject", claims.Subject))
	}
}
