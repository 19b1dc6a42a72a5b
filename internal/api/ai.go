package api

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coscribe-labs/coscribe/internal/citations"
)

// Chat roles accepted by the assistant endpoint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one prior exchange replayed for context. Only the role
// and text travel; citations and sources from earlier answers are stripped
// before resending.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks the assistant a question grounded in workspace notes.
// UseRAG nil lets the backend choose whether to retrieve note context.
type ChatRequest struct {
	Message             string             `json:"message"`
	WorkspaceID         string             `json:"workspace_id"`
	ConversationHistory []ConversationTurn `json:"conversation_history"`
	UseRAG              *bool              `json:"use_rag,omitempty"`
}

// Validate reports whether the request can be sent.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.WorkspaceID, validation.Required),
	)
}

// TokenUsage reports the model's token consumption for one answer.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the assistant's answer. Citations reference spans inside
// Message; Sources list the notes retrieval drew on.
type ChatResponse struct {
	Message   string               `json:"message"`
	Model     string               `json:"model"`
	Usage     TokenUsage           `json:"usage"`
	Sources   []citations.Source   `json:"sources,omitempty"`
	Citations []citations.Citation `json:"citations,omitempty"`
}

// Chat sends a question to the workspace assistant and returns its answer.
// Assistant latency dominates here, so callers should pass a generous
// context deadline and guard the response with a cancelled flag.
func (c *Client) Chat(ctx context.Context, request ChatRequest) (ChatResponse, error) {
	if err := request.Validate(); err != nil {
		return ChatResponse{}, fmt.Errorf("api: chat request: %w", err)
	}
	var response ChatResponse
	if err := c.do(ctx, http.MethodPost, "/ai/chat", nil, request, &response); err != nil {
		return ChatResponse{}, err
	}
	return response, nil
}
