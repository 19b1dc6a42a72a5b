package notes

import "testing"

func TestSnapshotAutoSelectsFirstNote(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)

	board.ApplySnapshot([]Note{
		note("n1", "First", "alpha"),
		note("n2", "Second", "beta"),
		note("n3", "Third", "gamma"),
	})

	if board.OpenID() != "n1" {
		t.Fatalf("expected first note auto-selected, got %q", board.OpenID())
	}
	mustBuffer(t, board, "First", "alpha")
}

func TestSnapshotResolvesPreviousSelectionByID(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "alpha"), note("n2", "Second", "beta")})
	board.Select("n2")

	board.ApplySnapshot([]Note{note("n2", "Second v2", "beta2"), note("n1", "First", "alpha")})

	if board.OpenID() != "n2" {
		t.Fatalf("expected selection to survive snapshot, got %q", board.OpenID())
	}
	mustBuffer(t, board, "Second v2", "beta2")
}

func TestLiveUpdateWhileIdleOverwritesOpenEditor(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "")})

	board.ApplyLiveUpdate("peer-1", "me", "n1", "Hello", nil)

	mustBuffer(t, board, "First", "Hello")
	if board.Notes()[0].Content != "Hello" {
		t.Fatal("expected list entry to carry the remote content")
	}
}

func TestLiveUpdateDuringTypingDefersToLocalBuffer(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "")})

	if _, _, ok := board.EditContent("local draft"); !ok {
		t.Fatal("expected edit to apply with an open note")
	}
	board.ApplyLiveUpdate("peer-1", "me", "n1", "remote text", nil)

	// Visible buffer keeps the local keystroke; the list is last-writer-wins.
	mustBuffer(t, board, "First", "local draft")
	if board.Notes()[0].Content != "remote text" {
		t.Fatal("expected list entry to reflect the last network write")
	}

	// Once the quiet window elapses, remote updates apply again.
	clock.fire()
	if board.Typing() {
		t.Fatal("expected typing window to end after quiet period")
	}
	board.ApplyLiveUpdate("peer-1", "me", "n1", "remote again", nil)
	mustBuffer(t, board, "First", "remote again")
}

func TestTypingWindowReArmsOnEveryKeystroke(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "")})

	board.EditContent("a")
	first := clock.pending[0]
	board.EditContent("ab")
	if !first.stopped {
		t.Fatal("expected re-arming to cancel the previous deadline")
	}
	if !board.Typing() {
		t.Fatal("expected typing to remain set while re-armed")
	}
	clock.fire()
	if board.Typing() {
		t.Fatal("expected typing to clear after the last deadline fires")
	}
}

func TestSelfEchoHasNoVisibleEffect(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "original")})

	board.ApplyLiveUpdate("me", "me", "n1", "echoed", stringPtr("Echo")) // own echo

	mustBuffer(t, board, "First", "original")
	if board.Notes()[0].Content != "original" {
		t.Fatal("self-echo must not touch the note list")
	}
}

func TestLiveUpdateTitleOnlyWhenProvided(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "Keep", "old")})

	board.ApplyLiveUpdate("peer-1", "me", "n1", "new content", nil)
	mustBuffer(t, board, "Keep", "new content")

	board.ApplyLiveUpdate("peer-1", "me", "n1", "newer", stringPtr("Renamed"))
	mustBuffer(t, board, "Renamed", "newer")
}

func TestLiveUpdateForOtherNoteLeavesEditorAlone(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "Open", "visible"), note("n2", "Other", "old")})

	board.ApplyLiveUpdate("peer-1", "me", "n2", "background change", nil)

	mustBuffer(t, board, "Open", "visible")
	if board.Notes()[1].Content != "background change" {
		t.Fatal("expected background note list entry to update")
	}
}

func TestCreatedDedupsByIDAndPrepends(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "alpha")})

	board.ApplyCreated(note("n2", "Second", "beta"))
	listed := board.Notes()
	if len(listed) != 2 || listed[0].ID != "n2" {
		t.Fatalf("expected new note prepended, got %+v", listed)
	}

	board.ApplyCreated(note("n2", "Second v2", "beta2"))
	listed = board.Notes()
	if len(listed) != 2 {
		t.Fatalf("expected dedup by id, got %d entries", len(listed))
	}
	if listed[0].Title != "Second v2" {
		t.Fatal("expected duplicate create to update in place")
	}
}

func TestCreatedSelectsWhenNothingOpen(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)

	board.ApplyCreated(note("n1", "Fresh", "body"))

	if board.OpenID() != "n1" {
		t.Fatalf("expected created note selected, got %q", board.OpenID())
	}
}

func TestStructuralUpdateIgnoresTypingWindow(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "")})
	board.EditContent("mid-keystroke")

	// Committed updates represent saved state, not live-typing echoes.
	board.ApplyUpdated(note("n1", "Committed", "saved body"))

	mustBuffer(t, board, "Committed", "saved body")
}

func TestDeleteOpenNoteClearsSelection(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "alpha"), note("n2", "Second", "beta")})

	board.ApplyDeleted("n1")

	if board.OpenID() != "" {
		t.Fatalf("expected selection cleared, got %q", board.OpenID())
	}
	mustBuffer(t, board, "", "")
	if len(board.Notes()) != 1 {
		t.Fatalf("expected one remaining note, got %d", len(board.Notes()))
	}
}

func TestDeleteOtherNoteLeavesOpenNote(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "alpha"), note("n2", "Second", "beta")})

	board.ApplyDeleted("n2")

	if board.OpenID() != "n1" {
		t.Fatalf("expected open note untouched, got %q", board.OpenID())
	}
	mustBuffer(t, board, "First", "alpha")
}

func TestEditReturnsBroadcastPayload(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "Title", "body")})

	noteID, title, ok := board.EditContent("body!")
	if !ok || noteID != "n1" || title != "Title" {
		t.Fatalf("unexpected edit result: id=%q title=%q ok=%v", noteID, title, ok)
	}

	noteID, content, ok := board.EditTitle("Title!")
	if !ok || noteID != "n1" || content != "body!" {
		t.Fatalf("unexpected title edit result: id=%q content=%q ok=%v", noteID, content, ok)
	}
}

func TestEditWithoutSelectionIsNoOp(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	if _, _, ok := board.EditContent("orphan"); ok {
		t.Fatal("expected edit without an open note to be refused")
	}
	if board.Typing() {
		t.Fatal("refused edit must not arm the typing window")
	}
}

func TestResetClearsEverything(t *testing.T) {
	clock := &manualClock{}
	board := newTestBoard(clock)
	board.ApplySnapshot([]Note{note("n1", "First", "alpha")})
	board.EditContent("typed")

	board.Reset()

	if len(board.Notes()) != 0 || board.OpenID() != "" || board.Typing() {
		t.Fatal("expected reset to clear list, selection, and typing window")
	}
}
