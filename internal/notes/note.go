package notes

// Note models a workspace note as delivered by the backend. Identifiers are
// opaque strings; timestamps stay in the RFC 3339 form the wire carries.
type Note struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	WorkspaceID string      `json:"workspace_id,omitempty"`
	AuthorID    string      `json:"author_id,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
	Attachment  *Attachment `json:"attachment,omitempty"`
}

// Attachment carries file metadata for notes created through upload.
type Attachment struct {
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	IsDocument    bool   `json:"is_document"`
}
