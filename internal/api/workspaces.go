package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMissingID indicates a workspace or note operation invoked without an
// identifier.
var ErrMissingID = errors.New("api: identifier is required")

// Workspace is a collaboration space owned by one user and shared with
// collaborators. The stats fields are populated only when listed with
// include_stats.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Role        string    `json:"role,omitempty"`
	NoteCount   int       `json:"note_count,omitempty"`
	MemberCount int       `json:"member_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListWorkspaces returns the workspaces visible to the authenticated user.
// includeStats asks the backend to attach note and member counts.
func (c *Client) ListWorkspaces(ctx context.Context, includeStats bool) ([]Workspace, error) {
	query := url.Values{}
	if includeStats {
		query.Set("include_stats", "true")
	}
	var workspaces []Workspace
	if err := c.do(ctx, http.MethodGet, "/workspaces/", query, nil, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// CreateWorkspace creates a workspace owned by the authenticated user.
func (c *Client) CreateWorkspace(ctx context.Context, name, description string) (Workspace, error) {
	payload := map[string]string{"name": strings.TrimSpace(name), "description": description}
	var workspace Workspace
	if err := c.do(ctx, http.MethodPost, "/workspaces/", nil, payload, &workspace); err != nil {
		return Workspace{}, err
	}
	return workspace, nil
}

// GetWorkspace fetches a single workspace by id.
func (c *Client) GetWorkspace(ctx context.Context, workspaceID string) (Workspace, error) {
	if workspaceID == "" {
		return Workspace{}, ErrMissingID
	}
	var workspace Workspace
	if err := c.do(ctx, http.MethodGet, "/workspaces/"+workspaceID, nil, nil, &workspace); err != nil {
		return Workspace{}, err
	}
	return workspace, nil
}

// DeleteWorkspace removes a workspace. Only the owner may delete.
func (c *Client) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	if workspaceID == "" {
		return ErrMissingID
	}
	return c.do(ctx, http.MethodDelete, "/workspaces/"+workspaceID, nil, nil, nil)
}
