package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/coscribe-labs/coscribe/internal/client"
)

// shell is the interactive terminal front end. Plain input is sent to the
// room chat; slash commands drive notes, workspaces, and the assistant.
type shell struct {
	app    *client.App
	logger *zap.Logger
}

func newShell(app *client.App, logger *zap.Logger) *shell {
	return &shell{app: app, logger: logger}
}

func (s *shell) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "coscribe ready. /help lists commands, plain text goes to chat.")

	s.app.SetNotifier(func(notice client.Notice) {
		fmt.Fprintf(out, "%s\n", notice.Detail)
	})

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if quit := s.handle(ctx, out, line); quit {
				return nil
			}
		}
	}
}

func (s *shell) handle(ctx context.Context, out io.Writer, line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if !strings.HasPrefix(trimmed, "/") {
		if err := s.app.SendChat(trimmed); err != nil {
			fmt.Fprintf(out, "chat failed: %v\n", err)
		}
		return false
	}

	command, argument, _ := strings.Cut(trimmed, " ")
	argument = strings.TrimSpace(argument)

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		s.printHelp(out)
	case "/ws":
		s.listWorkspaces(ctx, out)
	case "/open":
		s.openWorkspace(ctx, out, argument)
	case "/notes":
		s.listNotes(out)
	case "/note":
		if !s.app.SelectNote(argument) {
			fmt.Fprintf(out, "no note %q\n", argument)
		}
	case "/type":
		if !s.app.TypeContent(argument, len([]rune(argument))) {
			fmt.Fprintln(out, "no note open")
		}
	case "/title":
		if !s.app.TypeTitle(argument) {
			fmt.Fprintln(out, "no note open")
		}
	case "/new":
		if err := s.app.CreateNote(argument, ""); err != nil {
			fmt.Fprintf(out, "create failed: %v\n", err)
		}
	case "/del":
		if err := s.app.DeleteNote(argument); err != nil {
			fmt.Fprintf(out, "delete failed: %v\n", err)
		}
	case "/say":
		if err := s.app.SendChat(argument); err != nil {
			fmt.Fprintf(out, "chat failed: %v\n", err)
		}
	case "/peers":
		s.listPeers(out)
	case "/chat":
		s.printChat(out)
	case "/ai":
		s.askAI(ctx, out, argument)
	default:
		fmt.Fprintf(out, "unknown command %q, /help lists commands\n", command)
	}
	return false
}

func (s *shell) printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  /ws                list workspaces
  /open <id>         open a workspace
  /notes             list notes in the open workspace
  /note <id>         open a note in the editor
  /type <text>       replace the open note's content
  /title <text>      replace the open note's title
  /new <title>       create a note
  /del <id>          delete a note
  /say <text>        send a chat message (same as plain text)
  /peers             show peer cursors on the open note
  /chat              show the chat transcript
  /ai <question>     ask the workspace assistant
  /quit              exit
`)
}

func (s *shell) listWorkspaces(ctx context.Context, out io.Writer) {
	workspaces, err := s.app.Workspaces(ctx)
	if err != nil {
		fmt.Fprintf(out, "list failed: %v\n", err)
		return
	}
	for _, workspace := range workspaces {
		fmt.Fprintf(out, "%s  %s (%d notes, %d members)\n",
			workspace.ID, workspace.Name, workspace.NoteCount, workspace.MemberCount)
	}
}

func (s *shell) openWorkspace(ctx context.Context, out io.Writer, workspaceID string) {
	workspace, err := s.app.OpenWorkspace(ctx, workspaceID)
	if err != nil {
		fmt.Fprintf(out, "open failed: %v\n", err)
		return
	}
	fmt.Fprintf(out, "opened %s\n", workspace.Name)
}

func (s *shell) listNotes(out io.Writer) {
	openID := ""
	if open, ok := s.app.OpenNote(); ok {
		openID = open.ID
	}
	for _, note := range s.app.Notes() {
		marker := "  "
		if note.ID == openID {
			marker = "* "
		}
		fmt.Fprintf(out, "%s%s  %s\n", marker, note.ID, note.Title)
	}
}

func (s *shell) listPeers(out io.Writer) {
	for sid, state := range s.app.PeerCursors() {
		fmt.Fprintf(out, "%s at (%.0f, %.0f) %s\n", sid, state.Point.X, state.Point.Y, state.Color)
	}
}

func (s *shell) printChat(out io.Writer) {
	for _, message := range s.app.ChatMessages() {
		fmt.Fprintf(out, "[%s] %s\n", message.SID, message.Content)
	}
}

func (s *shell) askAI(ctx context.Context, out io.Writer, question string) {
	if question == "" {
		fmt.Fprintln(out, "usage: /ai <question>")
		return
	}
	turn, err := s.app.AskAI(ctx, question, nil)
	if err != nil {
		fmt.Fprintf(out, "%s\n", turn.Content)
		return
	}
	for _, segment := range turn.Spliced.Segments() {
		if segment.IsCitation() {
			fmt.Fprintf(out, "[%s]", segment.Citation.Title)
			continue
		}
		fmt.Fprint(out, segment.Text)
	}
	fmt.Fprintln(out)
	for _, source := range turn.Sources {
		fmt.Fprintf(out, "  source: %s\n", source.Title)
	}
}
