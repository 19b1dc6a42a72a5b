package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Permission levels for workspace collaborators.
const (
	PermissionViewer = 1
	PermissionEditor = 2
)

// User is the authenticated account as the backend sees it.
type User struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// SyncUser registers or refreshes the authenticated user's profile from the
// bearer token and returns the stored record. Called once after sign-in.
func (c *Client) SyncUser(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/me", nil, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Invitation is a pending request to join a workspace.
type Invitation struct {
	ID              string    `json:"id"`
	WorkspaceID     string    `json:"workspace_id"`
	WorkspaceName   string    `json:"workspace_name"`
	InvitedBy       string    `json:"invited_by"`
	PermissionLevel int       `json:"permission_level"`
	InvitedAt       time.Time `json:"invited_at"`
}

// ListInvitations returns the authenticated user's pending invitations.
func (c *Client) ListInvitations(ctx context.Context) ([]Invitation, error) {
	var invitations []Invitation
	if err := c.do(ctx, http.MethodGet, "/invitations/", nil, nil, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// AcceptInvitation joins the workspace the invitation names.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID string) error {
	if invitationID == "" {
		return ErrMissingID
	}
	return c.do(ctx, http.MethodPost, "/invitations/"+invitationID+"/accept", nil, nil, nil)
}

// DeclineInvitation discards a pending invitation.
func (c *Client) DeclineInvitation(ctx context.Context, invitationID string) error {
	if invitationID == "" {
		return ErrMissingID
	}
	return c.do(ctx, http.MethodPost, "/invitations/"+invitationID+"/decline", nil, nil, nil)
}

// Collaborator is a member of a workspace together with their access level.
type Collaborator struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	UserName          string     `json:"user_name"`
	UserEmail         string     `json:"user_email"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	PermissionLevel   int        `json:"permission_level"`
	IsOwner           bool       `json:"is_owner"`
	InvitedAt         time.Time  `json:"invited_at"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
}

// ListCollaborators returns a workspace's members, owner first.
func (c *Client) ListCollaborators(ctx context.Context, workspaceID string) ([]Collaborator, error) {
	if workspaceID == "" {
		return nil, ErrMissingID
	}
	var collaborators []Collaborator
	if err := c.do(ctx, http.MethodGet, "/workspaces/"+workspaceID+"/collaborators", nil, nil, &collaborators); err != nil {
		return nil, err
	}
	return collaborators, nil
}

// InviteCollaborator invites an email address to a workspace at the given
// permission level.
func (c *Client) InviteCollaborator(ctx context.Context, workspaceID, email string, permissionLevel int) error {
	if workspaceID == "" {
		return ErrMissingID
	}
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return fmt.Errorf("api: email: %w", err)
	}
	payload := map[string]any{"email": email, "permission_level": permissionLevel}
	return c.do(ctx, http.MethodPost, "/workspaces/"+workspaceID+"/collaborators", nil, payload, nil)
}

// UpdateCollaboratorPermission changes a member's access level.
func (c *Client) UpdateCollaboratorPermission(ctx context.Context, workspaceID, userID string, permissionLevel int) error {
	if workspaceID == "" || userID == "" {
		return ErrMissingID
	}
	payload := map[string]any{"permission_level": permissionLevel}
	return c.do(ctx, http.MethodPut, "/workspaces/"+workspaceID+"/collaborators/"+userID, nil, payload, nil)
}

// RemoveCollaborator removes a member from a workspace.
func (c *Client) RemoveCollaborator(ctx context.Context, workspaceID, userID string) error {
	if workspaceID == "" || userID == "" {
		return ErrMissingID
	}
	return c.do(ctx, http.MethodDelete, "/workspaces/"+workspaceID+"/collaborators/"+userID, nil, nil, nil)
}

// DashboardStats summarizes the authenticated user's footprint across
// workspaces.
type DashboardStats struct {
	WorkspaceCount     int `json:"workspace_count"`
	NoteCount          int `json:"note_count"`
	CollaboratorCount  int `json:"collaborator_count"`
	PendingInvitations int `json:"pending_invitations"`
}

// GetDashboardStats fetches the dashboard summary counters.
func (c *Client) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &stats); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}
