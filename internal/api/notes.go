package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coscribe-labs/coscribe/internal/notes"
)

// ErrNoFiles indicates an upload invoked with an empty file set.
var ErrNoFiles = errors.New("api: at least one file is required")

// ListNotes returns every note in a workspace, newest first.
func (c *Client) ListNotes(ctx context.Context, workspaceID string) ([]notes.Note, error) {
	if workspaceID == "" {
		return nil, ErrMissingID
	}
	query := url.Values{"workspace_id": {workspaceID}}
	var list []notes.Note
	if err := c.do(ctx, http.MethodGet, "/notes/", query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateNote creates a note in a workspace over REST. Most creation flows
// go through the realtime channel instead; this path exists for scripted
// imports and offline tooling.
func (c *Client) CreateNote(ctx context.Context, workspaceID, title, content string) (notes.Note, error) {
	payload := map[string]string{
		"workspace_id": workspaceID,
		"title":        title,
		"content":      content,
	}
	if err := validation.Validate(workspaceID, validation.Required); err != nil {
		return notes.Note{}, fmt.Errorf("api: workspace id: %w", err)
	}
	var created notes.Note
	if err := c.do(ctx, http.MethodPost, "/notes/", nil, payload, &created); err != nil {
		return notes.Note{}, err
	}
	return created, nil
}

// GetNote fetches a single note by id.
func (c *Client) GetNote(ctx context.Context, noteID string) (notes.Note, error) {
	if noteID == "" {
		return notes.Note{}, ErrMissingID
	}
	var note notes.Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+noteID, nil, nil, &note); err != nil {
		return notes.Note{}, err
	}
	return note, nil
}

// UpdateNote patches a note's title and/or content. Nil fields are left
// untouched by the backend.
func (c *Client) UpdateNote(ctx context.Context, noteID string, title, content *string) (notes.Note, error) {
	if noteID == "" {
		return notes.Note{}, ErrMissingID
	}
	payload := map[string]any{}
	if title != nil {
		payload["title"] = *title
	}
	if content != nil {
		payload["content"] = *content
	}
	var updated notes.Note
	if err := c.do(ctx, http.MethodPut, "/notes/"+noteID, nil, payload, &updated); err != nil {
		return notes.Note{}, err
	}
	return updated, nil
}

// DeleteNote removes a note over REST.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	if noteID == "" {
		return ErrMissingID
	}
	return c.do(ctx, http.MethodDelete, "/notes/"+noteID, nil, nil, nil)
}

// UploadInput is one file in an upload batch.
type UploadInput struct {
	Name   string
	Reader io.Reader
}

// UploadResult reports the outcome for one file of a batch; a failed file
// carries Err and a nil Note while the rest of the batch proceeds.
type UploadResult struct {
	FileName string      `json:"file_name"`
	Note     *notes.Note `json:"note,omitempty"`
	Err      string      `json:"error,omitempty"`
}

// UploadFile stores one file as a document note in the workspace.
func (c *Client) UploadFile(ctx context.Context, workspaceID string, file UploadInput) (notes.Note, error) {
	results, err := c.UploadFiles(ctx, workspaceID, []UploadInput{file})
	if err != nil {
		return notes.Note{}, err
	}
	result := results[0]
	if result.Err != "" {
		return notes.Note{}, &APIError{Status: http.StatusUnprocessableEntity, Message: result.Err}
	}
	if result.Note == nil {
		return notes.Note{}, errors.New("api: upload returned no note")
	}
	return *result.Note, nil
}

// UploadFiles stores a batch of files as document notes. Per-file failures
// are reported in the results rather than failing the whole batch.
func (c *Client) UploadFiles(ctx context.Context, workspaceID string, files []UploadInput) ([]UploadResult, error) {
	if workspaceID == "" {
		return nil, ErrMissingID
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	body, contentType, err := encodeMultipart(workspaceID, files)
	if err != nil {
		return nil, err
	}

	request, err := c.newRequest(ctx, http.MethodPost, "/notes/upload", nil, body)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", contentType)

	var results []UploadResult
	if err := c.send(request, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func encodeMultipart(workspaceID string, files []UploadInput) (io.Reader, string, error) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		err := func() error {
			if err := writer.WriteField("workspace_id", workspaceID); err != nil {
				return err
			}
			for _, file := range files {
				part, err := writer.CreateFormFile("files", file.Name)
				if err != nil {
					return err
				}
				if _, err := io.Copy(part, file.Reader); err != nil {
					return err
				}
			}
			return writer.Close()
		}()
		pipeWriter.CloseWithError(err) //nolint:errcheck
	}()

	return pipeReader, writer.FormDataContentType(), nil
}
