package realtime

import "strings"

// Room is an immutable handle over one joined workspace. Every outbound
// operation carries the room's workspace id explicitly; a zero Room makes
// every operation a silent no-op, matching the "nothing joined yet" state.
type Room struct {
	session     *Session
	workspaceID string
}

// Joined reports whether the handle targets a workspace.
func (r Room) Joined() bool {
	return r.session != nil && r.workspaceID != ""
}

// WorkspaceID returns the joined workspace id, or "" for the zero Room.
func (r Room) WorkspaceID() string {
	return r.workspaceID
}

// CreateNote asks the server to create a committed note record.
func (r Room) CreateNote(title, content string) error {
	if !r.Joined() {
		return nil
	}
	return r.session.emit(EventCreateNote, CreateNotePayload{
		WorkspaceID: r.workspaceID,
		Title:       title,
		Content:     content,
	})
}

// UpdateNote commits a discrete note update. Nil fields are left untouched.
func (r Room) UpdateNote(noteID string, title, content *string) error {
	if !r.Joined() {
		return nil
	}
	return r.session.emit(EventUpdateNote, UpdateNotePayload{
		WorkspaceID: r.workspaceID,
		NoteID:      noteID,
		Title:       title,
		Content:     content,
	})
}

// DeleteNote removes a note from the workspace on every connected client.
func (r Room) DeleteNote(noteID string) error {
	if !r.Joined() {
		return nil
	}
	return r.session.emit(EventDeleteNote, DeleteNotePayload{
		WorkspaceID: r.workspaceID,
		NoteID:      noteID,
	})
}

// LiveUpdate broadcasts the full current content and title for a note,
// one call per local keystroke.
func (r Room) LiveUpdate(noteID, content string, title *string) error {
	if !r.Joined() {
		return nil
	}
	return r.session.emit(EventLiveUpdate, LiveUpdatePayload{
		NoteID:      noteID,
		WorkspaceID: r.workspaceID,
		Content:     content,
		Title:       title,
	})
}

// CursorUpdate broadcasts the local selection within a note.
func (r Room) CursorUpdate(noteID string, cursor CursorRange, selection *CursorRange) error {
	if !r.Joined() {
		return nil
	}
	return r.session.emit(EventCursorUpdate, CursorUpdatePayload{
		NoteID:      noteID,
		WorkspaceID: r.workspaceID,
		Cursor:      cursor,
		Selection:   selection,
	})
}

// SendMessage emits a chat message. Empty or whitespace-only input is dropped
// before it reaches the wire.
func (r Room) SendMessage(content string) error {
	if !r.Joined() {
		return nil
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	return r.session.emit(EventMessage, MessagePayload{
		WorkspaceID: r.workspaceID,
		Content:     trimmed,
	})
}
