package chat

import (
	"strings"
	"sync"
)

// Message is a single workspace chat entry. SID is the connection id of the
// sender, not a stable user id; it is empty for entries the server could not
// attribute.
type Message struct {
	SID       string `json:"sid"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// IsOwn reports whether the message was sent over the given connection.
func (m Message) IsOwn(localSID string) bool {
	return localSID != "" && m.SID == localSID
}

// Log is the append-only message stream for one workspace room. Messages are
// kept in receipt order; nothing is edited or reconciled after the fact.
type Log struct {
	mu       sync.Mutex
	messages []Message
}

// NewLog returns an empty chat log.
func NewLog() *Log {
	return &Log{}
}

// ReplaceHistory installs the snapshot delivered on room join, discarding
// anything accumulated before it.
func (l *Log) ReplaceHistory(messages []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages[:0:0], messages...)
}

// Append adds a single message in receipt order. Blank content is dropped.
func (l *Log) Append(message Message) {
	if strings.TrimSpace(message.Content) == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

// Reset clears the log, used when leaving a workspace.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}

// Messages returns a copy of the stream in receipt order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.messages...)
}

// Len returns the number of stored messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
