package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/coscribe-labs/coscribe/internal/notes"
)

func TestListNotesFiltersByWorkspace(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("workspace_id"); got != "ws-1" {
			t.Fatalf("expected workspace filter, got %q", got)
		}
		json.NewEncoder(w).Encode([]notes.Note{{ID: "n-1", Title: "Roadmap"}})
	}))

	list, err := client.ListNotes(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(list) != 1 || list[0].ID != "n-1" {
		t.Fatalf("unexpected notes %+v", list)
	}
}

func TestUpdateNoteSendsOnlyProvidedFields(t *testing.T) {
	var payload map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(notes.Note{ID: "n-1", Title: "Renamed"})
	}))

	title := "Renamed"
	if _, err := client.UpdateNote(context.Background(), "n-1", &title, nil); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if payload["title"] != "Renamed" {
		t.Fatalf("expected title in payload, got %+v", payload)
	}
	if _, present := payload["content"]; present {
		t.Fatalf("content should be omitted, got %+v", payload)
	}
}

func TestUploadFilesReportsPerFileOutcomes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("workspace_id"); got != "ws-1" {
			t.Fatalf("expected workspace id field, got %q", got)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("expected 2 files, got %d", len(files))
		}
		part, err := files[0].Open()
		if err != nil {
			t.Fatalf("open part: %v", err)
		}
		contents, _ := io.ReadAll(part)
		part.Close()
		if string(contents) != "alpha" {
			t.Fatalf("unexpected first file contents %q", contents)
		}
		json.NewEncoder(w).Encode([]UploadResult{
			{FileName: "a.txt", Note: &notes.Note{ID: "n-1", Title: "a.txt"}},
			{FileName: "b.bin", Err: "unsupported file type"},
		})
	}))

	results, err := client.UploadFiles(context.Background(), "ws-1", []UploadInput{
		{Name: "a.txt", Reader: strings.NewReader("alpha")},
		{Name: "b.bin", Reader: strings.NewReader("beta")},
	})
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if results[0].Note == nil || results[0].Note.ID != "n-1" {
		t.Fatalf("expected note for first file, got %+v", results[0])
	}
	if results[1].Err != "unsupported file type" {
		t.Fatalf("expected error for second file, got %+v", results[1])
	}
}

func TestUploadFileSurfacesPerFileError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]UploadResult{{FileName: "b.bin", Err: "unsupported file type"}})
	}))

	_, err := client.UploadFile(context.Background(), "ws-1", UploadInput{Name: "b.bin", Reader: strings.NewReader("x")})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "unsupported file type" {
		t.Fatalf("expected per-file APIError, got %v", err)
	}
}

func TestUploadFilesRequiresInput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	if _, err := client.UploadFiles(context.Background(), "ws-1", nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}
