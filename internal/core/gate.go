// ABOUTME: RetrievalGate asks the chat backend whether a turn needs a product lookup
// ABOUTME: Only the single turn is sent; any reply without "yes" counts as no
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
)

// RetrievalGate decides per turn whether to search the product store
type RetrievalGate struct {
	chat llm.Chat
}

// NewRetrievalGate creates a gate backed by chat
func NewRetrievalGate(chat llm.Chat) *RetrievalGate {
	return &RetrievalGate{chat: chat}
}

// Decide returns true iff the backend's reply contains "yes" in any case.
// Empty or unexpected replies are a no.
func (g *RetrievalGate) Decide(ctx context.Context, turn models.ChatMessage) (bool, error) {
	reply, err := g.chat.Chat(ctx, []models.ChatMessage{
		models.NewUserMessage(renderSearchDecision(turn.Content)),
	})
	if err != nil {
		return false, fmt.Errorf("search decision: %w", err)
	}
	return strings.Contains(strings.ToLower(reply.Content), "yes"), nil
}
