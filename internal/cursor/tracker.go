package cursor

import (
	"sync"

	"go.uber.org/zap"
)

var noOpLogger = zap.NewNop()

// State is everything known about one remote peer's cursor: the note it
// targets, the selection offsets, the last projected pixel position, and the
// peer's display color. States persist while the peer stays connected so a
// cursor reappears instantly when the user switches to its note.
type State struct {
	NoteID    string
	Start     int
	End       int
	Point     Point
	Projected bool
	Color     string
}

// View describes the locally open editor at the moment of projection. A nil
// Measurer means no editor is mounted and projection degrades to logical
// tracking.
type View struct {
	NoteID   string
	Content  string
	Style    TextStyle
	Measurer Measurer
}

// Tracker keeps per-peer cursor state keyed by connection id and projects
// selections into pixel space against the open note. Projection happens on
// every observed event, never from cache: scroll position and content length
// change continuously underneath the stored coordinates.
type Tracker struct {
	logger *zap.Logger

	mu    sync.Mutex
	peers map[string]State
}

// NewTracker returns an empty tracker.
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = noOpLogger
	}
	return &Tracker{
		logger: logger,
		peers:  make(map[string]State),
	}
}

// Observe merges one cursor event. Peers targeting a note other than the
// open one are retained logically but not projected; measurement failure
// stores the zero point rather than failing, since a misplaced cursor beats
// a crashed view.
func (t *Tracker) Observe(sid, noteID string, start, end int, view View) (State, bool) {
	if sid == "" || noteID == "" {
		return State{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.peers[sid]
	state.NoteID = noteID
	state.Start = start
	state.End = end
	state.Color = ColorForSID(sid)

	if noteID != view.NoteID || view.Measurer == nil {
		state.Projected = false
		t.peers[sid] = state
		return state, true
	}

	point, err := view.Measurer.Measure(view.Content, view.Style, start)
	if err != nil {
		t.logger.Debug("cursor projection degraded",
			zap.String("sid", sid),
			zap.String("note_id", noteID),
			zap.Error(err))
		point = Point{}
	}
	state.Point = point
	state.Projected = true
	t.peers[sid] = state
	return state, true
}

// RemovePeer drops all cursor state for a disconnected peer.
func (t *Tracker) RemovePeer(sid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, sid)
}

// RemoveNote drops cursor state targeting a deleted note. Peers with
// cursors on other notes are untouched.
func (t *Tracker) RemoveNote(noteID string) {
	if noteID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for sid, state := range t.peers {
		if state.NoteID == noteID {
			delete(t.peers, sid)
		}
	}
}

// Reset drops every peer, used when switching workspaces.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers = make(map[string]State)
}

// Visible returns the cursors that may be rendered right now: only peers
// whose target note is the open note, and only with a live projection.
func (t *Tracker) Visible(openNoteID string) map[string]State {
	t.mu.Lock()
	defer t.mu.Unlock()
	visible := make(map[string]State)
	if openNoteID == "" {
		return visible
	}
	for sid, state := range t.peers {
		if state.NoteID == openNoteID && state.Projected {
			visible[sid] = state
		}
	}
	return visible
}

// Peers returns a copy of all tracked cursor states, projected or not.
func (t *Tracker) Peers() map[string]State {
	t.mu.Lock()
	defer t.mu.Unlock()
	peers := make(map[string]State, len(t.peers))
	for sid, state := range t.peers {
		peers[sid] = state
	}
	return peers
}
