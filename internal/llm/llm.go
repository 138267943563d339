// ABOUTME: Backend interfaces for chat completion and text embedding
// ABOUTME: Agents, limiters and caches compose over these two narrow contracts
package llm

import (
	"context"

	"github.com/harper/shopassist/internal/models"
)

// Chat produces one assistant reply for an ordered list of messages
type Chat interface {
	Chat(ctx context.Context, messages []models.ChatMessage) (models.ChatMessage, error)
	// CountTokens returns the token count of messages for this backend's model
	CountTokens(messages []models.ChatMessage) int
}

// Embedding turns text into a fixed-dimension vector
type Embedding interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	CountTokens(text string) int
}
