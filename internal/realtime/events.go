package realtime

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coscribe-labs/coscribe/internal/chat"
	"github.com/coscribe-labs/coscribe/internal/notes"
)

// Outbound event names. Every outbound event except EventJoinRoom is
// implicitly scoped to the previously joined workspace.
const (
	EventJoinRoom     = "join_room"
	EventCreateNote   = "create_note"
	EventUpdateNote   = "update_note"
	EventDeleteNote   = "delete_note"
	EventLiveUpdate   = "note_live_update"
	EventCursorUpdate = "cursor_update"
	EventMessage      = "message"
)

// Inbound event names.
const (
	EventConnected        = "connected"
	EventNotesList        = "notes_list"
	EventNoteCreated      = "note_created"
	EventNoteUpdated      = "note_updated"
	EventNoteDeleted      = "note_deleted"
	EventChatHistory      = "chat_history"
	EventNewMessage       = "new_message"
	EventUserJoined       = "user_joined"
	EventUserDisconnected = "user_disconnected"
	EventAuthError        = "auth_error"
)

// Envelope is the wire framing for every realtime event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an envelope for the named event.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// CursorRange carries a selection as character offsets into note content.
type CursorRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// JoinRoomPayload requests membership in a workspace room.
type JoinRoomPayload struct {
	WorkspaceID string `json:"workspace_id"`
}

// Validate reports whether the payload can be emitted.
func (p JoinRoomPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
	)
}

// CreateNotePayload requests creation of a committed note record.
type CreateNotePayload struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

// Validate reports whether the payload can be emitted.
func (p CreateNotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
	)
}

// UpdateNotePayload commits a discrete note update. Nil title or content
// leaves the corresponding field untouched server-side.
type UpdateNotePayload struct {
	WorkspaceID string  `json:"workspace_id"`
	NoteID      string  `json:"note_id"`
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// Validate reports whether the payload can be emitted.
func (p UpdateNotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
		validation.Field(&p.NoteID, validation.Required),
	)
}

// DeleteNotePayload removes a note from the workspace.
type DeleteNotePayload struct {
	WorkspaceID string `json:"workspace_id"`
	NoteID      string `json:"note_id"`
}

// Validate reports whether the payload can be emitted.
func (p DeleteNotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
		validation.Field(&p.NoteID, validation.Required),
	)
}

// LiveUpdatePayload broadcasts in-progress edit content, one per keystroke.
type LiveUpdatePayload struct {
	NoteID      string  `json:"note_id"`
	WorkspaceID string  `json:"workspace_id"`
	Content     string  `json:"content"`
	Title       *string `json:"title,omitempty"`
}

// Validate reports whether the payload can be emitted.
func (p LiveUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
		validation.Field(&p.NoteID, validation.Required),
	)
}

// CursorUpdatePayload broadcasts the local selection within a note.
type CursorUpdatePayload struct {
	NoteID      string       `json:"note_id"`
	WorkspaceID string       `json:"workspace_id"`
	Cursor      CursorRange  `json:"cursor"`
	Selection   *CursorRange `json:"selection,omitempty"`
}

// Validate reports whether the payload can be emitted.
func (p CursorUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
		validation.Field(&p.NoteID, validation.Required),
	)
}

// MessagePayload sends a chat message to the workspace room.
type MessagePayload struct {
	WorkspaceID string `json:"workspace_id"`
	Content     string `json:"content"`
}

// Validate reports whether the payload can be emitted.
func (p MessagePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.WorkspaceID, validation.Required),
		validation.Field(&p.Content, validation.Required),
	)
}

// ConnectedEvent acknowledges the handshake and assigns the connection id.
type ConnectedEvent struct {
	SID string `json:"sid"`
}

// NotesListEvent is the full note snapshot delivered on room join.
type NotesListEvent struct {
	Notes []notes.Note `json:"notes"`
}

// NoteDeletedEvent announces a note removal.
type NoteDeletedEvent struct {
	ID string `json:"id"`
}

// LiveUpdateEvent is a peer's in-progress edit, tagged with the sender id so
// receivers can drop their own echoes.
type LiveUpdateEvent struct {
	NoteID  string  `json:"note_id"`
	Content string  `json:"content"`
	Title   *string `json:"title,omitempty"`
	SID     string  `json:"sid,omitempty"`
}

// CursorUpdateEvent is a peer's selection within a note.
type CursorUpdateEvent struct {
	SID       string       `json:"sid"`
	NoteID    string       `json:"note_id"`
	Cursor    CursorRange  `json:"cursor"`
	Selection *CursorRange `json:"selection,omitempty"`
}

// ChatHistoryEvent is the message snapshot delivered on room join.
type ChatHistoryEvent struct {
	Messages []chat.Message `json:"messages"`
}

// PresenceEvent identifies a peer joining or leaving the room.
type PresenceEvent struct {
	SID string `json:"sid"`
}

// AuthErrorEvent reports a rejected handshake token. The connection stays
// open; unauthenticated operations fail silently server-side.
type AuthErrorEvent struct {
	Message string `json:"message"`
}
