package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/coscribe-labs/coscribe/internal/api"
	"github.com/coscribe-labs/coscribe/internal/chat"
	"github.com/coscribe-labs/coscribe/internal/cursor"
	"github.com/coscribe-labs/coscribe/internal/notes"
	"github.com/coscribe-labs/coscribe/internal/realtime"
)

var (
	// ErrNoWorkspace indicates an operation that needs an open workspace.
	ErrNoWorkspace = errors.New("client: no workspace open")

	// ErrNoSession indicates the app was built without a realtime session.
	ErrNoSession = errors.New("client: session is required")

	noOpLogger = zap.NewNop()
)

// AppConfig describes the collaborators of the application shell. Session
// and API are required; state holders default to fresh instances.
type AppConfig struct {
	Session *realtime.Session
	API     *api.Client
	Board   *notes.Board
	ChatLog *chat.Log
	Tracker *cursor.Tracker
	Logger  *zap.Logger
}

// App is the client application shell. It owns the workspace state (note
// board, chat log, peer cursors, assistant conversation) and translates
// between inbound realtime events and local mutations. All methods are safe
// for concurrent use.
type App struct {
	session *realtime.Session
	api     *api.Client
	board   *notes.Board
	chatLog *chat.Log
	tracker *cursor.Tracker
	logger  *zap.Logger

	mu        sync.Mutex
	room      realtime.Room
	workspace api.Workspace
	user      api.User
	measurer  cursor.Measurer
	style     cursor.TextStyle
	turns     []AITurn
	notifier  func(Notice)
}

// Notice describes a remote state change a front end may want to repaint
// for. Kind is one of "chat", "notes", "presence".
type Notice struct {
	Kind   string
	Detail string
}

// NewApp wires the shell and registers its event handlers on the session.
func NewApp(cfg AppConfig) (*App, error) {
	if cfg.Session == nil {
		return nil, ErrNoSession
	}
	if cfg.API == nil {
		return nil, errors.New("client: api client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	board := cfg.Board
	if board == nil {
		board = notes.NewBoard(notes.BoardConfig{Logger: logger})
	}
	chatLog := cfg.ChatLog
	if chatLog == nil {
		chatLog = chat.NewLog()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = cursor.NewTracker(logger)
	}

	app := &App{
		session: cfg.Session,
		api:     cfg.API,
		board:   board,
		chatLog: chatLog,
		tracker: tracker,
		logger:  logger,
	}
	app.registerHandlers()
	return app, nil
}

// Connect authenticates the realtime session and syncs the user profile
// from the same token. The profile sync failing is not fatal; workspace
// operations still work.
func (a *App) Connect(ctx context.Context, token string) error {
	a.api.SetToken(token)
	if err := a.session.Open(ctx, token); err != nil {
		return err
	}
	user, err := a.api.SyncUser(ctx)
	if err != nil {
		a.logger.Warn("user profile sync failed", zap.Error(err))
		return nil
	}
	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
	return nil
}

// Close tears down the realtime session. Workspace state is kept so a
// caller can inspect it after disconnect.
func (a *App) Close() {
	a.session.Close()
}

// User returns the synced profile of the authenticated user.
func (a *App) User() api.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// Workspace returns the currently open workspace.
func (a *App) Workspace() api.Workspace {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.workspace
}

// Workspaces lists the workspaces visible to the user, with stats.
func (a *App) Workspaces(ctx context.Context) ([]api.Workspace, error) {
	return a.api.ListWorkspaces(ctx, true)
}

// OpenWorkspace fetches the workspace over REST, resets all per-workspace
// state, and joins its realtime room. The note snapshot and chat history
// arrive asynchronously through the room events.
func (a *App) OpenWorkspace(ctx context.Context, workspaceID string) (api.Workspace, error) {
	workspace, err := a.api.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return api.Workspace{}, err
	}

	a.board.Reset()
	a.chatLog.Reset()
	a.tracker.Reset()

	room, err := a.session.Join(workspaceID)
	if err != nil {
		return api.Workspace{}, err
	}

	a.mu.Lock()
	a.room = room
	a.workspace = workspace
	a.turns = nil
	a.mu.Unlock()
	return workspace, nil
}

func (a *App) currentRoom() realtime.Room {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.room
}

// SetNotifier installs a callback invoked from the read loop whenever a
// remote change lands. The callback must not block.
func (a *App) SetNotifier(fn func(Notice)) {
	a.mu.Lock()
	a.notifier = fn
	a.mu.Unlock()
}

func (a *App) notify(kind, detail string) {
	a.mu.Lock()
	fn := a.notifier
	a.mu.Unlock()
	if fn != nil {
		fn(Notice{Kind: kind, Detail: detail})
	}
}

// SetEditorView installs the text measurer and meter geometry used to
// project peer cursors onto the open note.
func (a *App) SetEditorView(measurer cursor.Measurer, style cursor.TextStyle) {
	a.mu.Lock()
	a.measurer = measurer
	a.style = style
	a.mu.Unlock()
}

func (a *App) currentView() cursor.View {
	a.mu.Lock()
	measurer, style := a.measurer, a.style
	a.mu.Unlock()
	_, content := a.board.Buffer()
	return cursor.View{
		NoteID:   a.board.OpenID(),
		Content:  content,
		Style:    style,
		Measurer: measurer,
	}
}

// Notes returns the board's note list, newest first.
func (a *App) Notes() []notes.Note {
	return a.board.Notes()
}

// OpenNote returns the note currently open in the editor.
func (a *App) OpenNote() (notes.Note, bool) {
	return a.board.OpenNote()
}

// Buffer returns the open note's editable title and content.
func (a *App) Buffer() (title, content string) {
	return a.board.Buffer()
}

// SelectNote opens a note in the editor and announces the caret reset to
// peers.
func (a *App) SelectNote(noteID string) bool {
	if !a.board.Select(noteID) {
		return false
	}
	room := a.currentRoom()
	if err := room.CursorUpdate(noteID, realtime.CursorRange{}, nil); err != nil {
		a.logger.Debug("cursor announce failed", zap.Error(err))
	}
	return true
}

// TypeContent applies a local content edit and broadcasts the full buffer,
// title included, together with the caret position. Returns false when no
// note is open.
func (a *App) TypeContent(content string, caret int) bool {
	noteID, title, ok := a.board.EditContent(content)
	if !ok {
		return false
	}
	room := a.currentRoom()
	if err := room.LiveUpdate(noteID, content, &title); err != nil {
		a.logger.Warn("live update failed", zap.Error(err))
	}
	if err := room.CursorUpdate(noteID, realtime.CursorRange{Start: caret, End: caret}, nil); err != nil {
		a.logger.Debug("cursor update failed", zap.Error(err))
	}
	return true
}

// TypeTitle applies a local title edit and broadcasts it live. The current
// content rides along so receivers get a consistent pair.
func (a *App) TypeTitle(title string) bool {
	noteID, content, ok := a.board.EditTitle(title)
	if !ok {
		return false
	}
	if err := a.currentRoom().LiveUpdate(noteID, content, &title); err != nil {
		a.logger.Warn("live update failed", zap.Error(err))
	}
	return true
}

// MoveCursor announces the local caret or selection to peers.
func (a *App) MoveCursor(start, end int) {
	noteID := a.board.OpenID()
	if noteID == "" {
		return
	}
	var selection *realtime.CursorRange
	if start != end {
		selection = &realtime.CursorRange{Start: start, End: end}
	}
	if err := a.currentRoom().CursorUpdate(noteID, realtime.CursorRange{Start: start, End: start}, selection); err != nil {
		a.logger.Debug("cursor update failed", zap.Error(err))
	}
}

// PeerCursors returns projected peer cursors for the open note.
func (a *App) PeerCursors() map[string]cursor.State {
	return a.tracker.Visible(a.board.OpenID())
}

// CreateNote asks the room to create a note. The note appears through the
// note_created broadcast, same as for every other member.
func (a *App) CreateNote(title, content string) error {
	return a.currentRoom().CreateNote(title, content)
}

// UpdateNote commits a structural note change through the room.
func (a *App) UpdateNote(noteID string, title, content *string) error {
	return a.currentRoom().UpdateNote(noteID, title, content)
}

// DeleteNote asks the room to delete a note.
func (a *App) DeleteNote(noteID string) error {
	return a.currentRoom().DeleteNote(noteID)
}

// ChatMessages returns the chat transcript, oldest first.
func (a *App) ChatMessages() []chat.Message {
	return a.chatLog.Messages()
}

// SendChat broadcasts a chat message to the room. The message lands in the
// local transcript through the new_message echo, keeping ordering identical
// for every member.
func (a *App) SendChat(content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return a.currentRoom().SendMessage(content)
}

func (a *App) registerHandlers() {
	a.session.On(realtime.EventNotesList, func(data json.RawMessage) {
		var event realtime.NotesListEvent
		if !a.decode(realtime.EventNotesList, data, &event) {
			return
		}
		a.board.ApplySnapshot(event.Notes)
		a.notify("notes", fmt.Sprintf("%d notes loaded", len(event.Notes)))
	})
	a.session.On(realtime.EventNoteCreated, func(data json.RawMessage) {
		var note notes.Note
		if !a.decode(realtime.EventNoteCreated, data, &note) {
			return
		}
		a.board.ApplyCreated(note)
		a.notify("notes", "note created: "+note.Title)
	})
	a.session.On(realtime.EventNoteUpdated, func(data json.RawMessage) {
		var note notes.Note
		if !a.decode(realtime.EventNoteUpdated, data, &note) {
			return
		}
		a.board.ApplyUpdated(note)
	})
	a.session.On(realtime.EventNoteDeleted, func(data json.RawMessage) {
		var event realtime.NoteDeletedEvent
		if !a.decode(realtime.EventNoteDeleted, data, &event) {
			return
		}
		a.board.ApplyDeleted(event.ID)
		a.tracker.RemoveNote(event.ID)
		a.notify("notes", "note deleted: "+event.ID)
	})
	a.session.On(realtime.EventLiveUpdate, func(data json.RawMessage) {
		var event realtime.LiveUpdateEvent
		if !a.decode(realtime.EventLiveUpdate, data, &event) {
			return
		}
		a.board.ApplyLiveUpdate(event.SID, a.session.SID(), event.NoteID, event.Content, event.Title)
	})
	a.session.On(realtime.EventCursorUpdate, func(data json.RawMessage) {
		var event realtime.CursorUpdateEvent
		if !a.decode(realtime.EventCursorUpdate, data, &event) {
			return
		}
		if event.SID == a.session.SID() {
			return
		}
		start, end := event.Cursor.Start, event.Cursor.End
		if event.Selection != nil {
			start, end = event.Selection.Start, event.Selection.End
		}
		a.tracker.Observe(event.SID, event.NoteID, start, end, a.currentView())
	})
	a.session.On(realtime.EventChatHistory, func(data json.RawMessage) {
		var event realtime.ChatHistoryEvent
		if !a.decode(realtime.EventChatHistory, data, &event) {
			return
		}
		a.chatLog.ReplaceHistory(event.Messages)
	})
	a.session.On(realtime.EventNewMessage, func(data json.RawMessage) {
		var message chat.Message
		if !a.decode(realtime.EventNewMessage, data, &message) {
			return
		}
		a.chatLog.Append(message)
		a.notify("chat", "["+message.SID+"] "+message.Content)
	})
	a.session.On(realtime.EventUserJoined, func(data json.RawMessage) {
		var event realtime.PresenceEvent
		if !a.decode(realtime.EventUserJoined, data, &event) {
			return
		}
		a.logger.Debug("peer joined", zap.String("sid", event.SID))
		a.notify("presence", event.SID+" joined")
	})
	a.session.On(realtime.EventUserDisconnected, func(data json.RawMessage) {
		var event realtime.PresenceEvent
		if !a.decode(realtime.EventUserDisconnected, data, &event) {
			return
		}
		a.tracker.RemovePeer(event.SID)
		a.notify("presence", event.SID+" left")
	})
}

func (a *App) decode(event string, data json.RawMessage, out any) bool {
	if err := json.Unmarshal(data, out); err != nil {
		a.logger.Warn("malformed event payload", zap.String("event", event), zap.Error(err))
		return false
	}
	return true
}
