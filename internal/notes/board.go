package notes

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultQuietWindow is the quiet period after the last local keystroke
// before inbound live updates may overwrite the visible editor buffer again.
const DefaultQuietWindow = 300 * time.Millisecond

var noOpLogger = zap.NewNop()

// BoardConfig describes the dependencies of a workspace board.
type BoardConfig struct {
	QuietWindow time.Duration
	StartTimer  StartTimerFunc
	Logger      *zap.Logger
}

// Board is the per-workspace editor state machine: the ordered note list,
// the open note, the visible editor buffer, and the typing-suppression
// window that keeps remote live updates from clobbering in-progress typing.
//
// The suppression window is a deliberate trade-off, not conflict resolution:
// two users editing the same note inside the same window can lose one side's
// keystrokes in the live view, while the last network write still wins in
// the note list. Operational transforms and CRDTs are out of scope.
type Board struct {
	quietWindow time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	notes     []Note
	openID    string
	title     string
	content   string
	typing    bool
	typingSeq uint64
	quiet     *quietTimer
}

// NewBoard constructs an empty board.
func NewBoard(cfg BoardConfig) *Board {
	window := cfg.QuietWindow
	if window <= 0 {
		window = DefaultQuietWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Board{
		quietWindow: window,
		logger:      logger,
		quiet:       newQuietTimer(cfg.StartTimer),
	}
}

// Reset discards all workspace state, used when switching workspaces.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = nil
	b.openID = ""
	b.title = ""
	b.content = ""
	b.typing = false
	b.quiet.Cancel()
}

// Notes returns a copy of the note list in its current order.
func (b *Board) Notes() []Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Note(nil), b.notes...)
}

// OpenNote returns the list entry for the open note, if one is selected.
func (b *Board) OpenNote() (Note, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openID == "" {
		return Note{}, false
	}
	if note, index := b.findLocked(b.openID); index >= 0 {
		return note, true
	}
	return Note{ID: b.openID, Title: b.title, Content: b.content}, true
}

// OpenID returns the open note id, or "" when nothing is selected.
func (b *Board) OpenID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openID
}

// Buffer returns the visible editor title and content.
func (b *Board) Buffer() (title, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title, b.content
}

// Typing reports whether the local user is inside the quiet window.
func (b *Board) Typing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.typing
}

// Select opens the note with the given id, loading its committed state into
// the editor buffer. An empty id clears the selection. Selecting discards
// any unsaved buffer divergence, so the view shows the list's last-committed
// value again.
func (b *Board) Select(noteID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectLocked(noteID)
}

func (b *Board) selectLocked(noteID string) bool {
	if noteID == "" {
		b.openID = ""
		b.title = ""
		b.content = ""
		return true
	}
	note, index := b.findLocked(noteID)
	if index < 0 {
		return false
	}
	b.openID = note.ID
	b.title = note.Title
	b.content = note.Content
	return true
}

// EditContent applies a local keystroke to the content buffer. It updates
// the buffer immediately so the editor never lags, marks the typing window,
// and returns what the caller must broadcast: the open note id plus the full
// buffer. ok is false when no note is open.
func (b *Board) EditContent(content string) (noteID, title string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openID == "" {
		return "", "", false
	}
	b.content = content
	b.markTypingLocked()
	return b.openID, b.title, true
}

// EditTitle applies a local keystroke to the title buffer, mirroring
// EditContent.
func (b *Board) EditTitle(title string) (noteID, content string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openID == "" {
		return "", "", false
	}
	b.title = title
	b.markTypingLocked()
	return b.openID, b.content, true
}

func (b *Board) markTypingLocked() {
	b.typing = true
	b.typingSeq++
	seq := b.typingSeq
	// The sequence check keeps a stale deadline that already fired from
	// ending a window a newer keystroke re-armed.
	b.quiet.Arm(b.quietWindow, func() {
		b.mu.Lock()
		if b.typingSeq == seq {
			b.typing = false
		}
		b.mu.Unlock()
	})
}

// ApplySnapshot installs the full note list delivered on room join. The
// previous selection is re-resolved by id when still present; otherwise the
// first note is auto-selected. Joins and rejoins self-heal drift this way.
func (b *Board) ApplySnapshot(list []Note) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append([]Note(nil), list...)
	if b.openID != "" {
		if b.selectLocked(b.openID) {
			return
		}
	}
	if len(b.notes) > 0 {
		b.selectLocked(b.notes[0].ID)
	} else {
		b.selectLocked("")
	}
}

// ApplyCreated merges a committed note creation: new notes are prepended,
// known ids are updated in place, and the note is selected when nothing was.
func (b *Board) ApplyCreated(note Note) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, index := b.findLocked(note.ID); index >= 0 {
		b.notes[index] = note
	} else {
		b.notes = append([]Note{note}, b.notes...)
	}
	if b.openID == "" {
		b.selectLocked(note.ID)
	}
}

// ApplyUpdated merges a committed note update. Unlike live updates there is
// no typing suppression: committed state always replaces both the list entry
// and, when the note is open, the editor buffer.
func (b *Board) ApplyUpdated(note Note) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, index := b.findLocked(note.ID); index >= 0 {
		b.notes[index] = note
	}
	if b.openID == note.ID {
		b.title = note.Title
		b.content = note.Content
	}
}

// ApplyDeleted removes a note. Deleting the open note clears the selection;
// deleting any other leaves the open editor untouched.
func (b *Board) ApplyDeleted(noteID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, index := b.findLocked(noteID); index >= 0 {
		b.notes = append(b.notes[:index], b.notes[index+1:]...)
	}
	if b.openID == noteID {
		b.selectLocked("")
	}
}

// ApplyLiveUpdate merges a peer's in-progress edit. Self-echoes are dropped
// by sid. The list entry is overwritten unconditionally (title only when
// provided); the visible buffer is overwritten only when the note is open
// and the local user is outside the quiet window.
func (b *Board) ApplyLiveUpdate(senderSID, localSID, noteID, content string, title *string) {
	if senderSID != "" && senderSID == localSID {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, index := b.findLocked(noteID); index >= 0 {
		b.notes[index].Content = content
		if title != nil {
			b.notes[index].Title = *title
		}
	}

	if b.openID != noteID || b.typing {
		return
	}
	b.content = content
	if title != nil {
		b.title = *title
	}
}

func (b *Board) findLocked(noteID string) (Note, int) {
	for index, note := range b.notes {
		if note.ID == noteID {
			return note, index
		}
	}
	return Note{}, -1
}
