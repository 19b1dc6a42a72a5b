package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/coscribe-labs/coscribe/internal/api"
	"github.com/coscribe-labs/coscribe/internal/citations"
)

// AITurn is one exchange in the assistant conversation. Assistant turns
// carry the spliced answer with clickable citation markers; Err is set when
// the request failed and Content holds the presentable message. The
// conversation lives in memory only and is discarded on workspace change.
type AITurn struct {
	Role    string
	Content string
	Spliced citations.Spliced
	Sources []citations.Source
	Model   string
	Usage   api.TokenUsage
	Err     bool
}

// Conversation returns a copy of the assistant transcript for the open
// workspace.
func (a *App) Conversation() []AITurn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AITurn(nil), a.turns...)
}

// ResetConversation discards the assistant transcript.
func (a *App) ResetConversation() {
	a.mu.Lock()
	a.turns = nil
	a.mu.Unlock()
}

// AskAI sends a question to the workspace assistant, replaying the prior
// turns as plain role and text pairs. Both the question and the outcome are
// appended to the transcript; a failed request becomes an error turn rather
// than losing the question.
func (a *App) AskAI(ctx context.Context, question string, useRAG *bool) (AITurn, error) {
	a.mu.Lock()
	workspaceID := a.workspace.ID
	history := make([]api.ConversationTurn, 0, len(a.turns))
	for _, turn := range a.turns {
		if turn.Err {
			continue
		}
		history = append(history, api.ConversationTurn{Role: turn.Role, Content: turn.Content})
	}
	a.mu.Unlock()

	if workspaceID == "" {
		return AITurn{}, ErrNoWorkspace
	}

	response, err := a.api.Chat(ctx, api.ChatRequest{
		Message:             question,
		WorkspaceID:         workspaceID,
		ConversationHistory: history,
		UseRAG:              useRAG,
	})

	userTurn := AITurn{Role: api.RoleUser, Content: question}
	if err != nil {
		a.logger.Warn("assistant request failed", zap.Error(err))
		errTurn := AITurn{Role: api.RoleAssistant, Content: "The assistant is unavailable right now.", Err: true}
		a.appendTurns(userTurn, errTurn)
		return errTurn, err
	}

	answer := AITurn{
		Role:    api.RoleAssistant,
		Content: response.Message,
		Spliced: citations.Splice(response.Message, response.Citations),
		Sources: response.Sources,
		Model:   response.Model,
		Usage:   response.Usage,
	}
	a.appendTurns(userTurn, answer)
	return answer, nil
}

func (a *App) appendTurns(turns ...AITurn) {
	a.mu.Lock()
	a.turns = append(a.turns, turns...)
	a.mu.Unlock()
}
