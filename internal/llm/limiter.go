// ABOUTME: Token-limit decorators for chat and embedding backends
// ABOUTME: Over-limit requests fail before reaching the wrapped backend
package llm

import (
	"context"

	"github.com/harper/shopassist/internal/models"
)

// LimitedChat rejects conversations whose token count exceeds Limit
type LimitedChat struct {
	inner Chat
	limit int
}

// LimitChat wraps inner so requests over limit tokens fail with ErrTokenLimitExceeded
func LimitChat(inner Chat, limit int) *LimitedChat {
	return &LimitedChat{inner: inner, limit: limit}
}

// Chat counts tokens with the inner backend and forwards only when within the limit
func (c *LimitedChat) Chat(ctx context.Context, messages []models.ChatMessage) (models.ChatMessage, error) {
	if n := c.inner.CountTokens(messages); n > c.limit {
		return models.ChatMessage{}, &TokenLimitError{Tokens: n, Limit: c.limit}
	}
	return c.inner.Chat(ctx, messages)
}

func (c *LimitedChat) CountTokens(messages []models.ChatMessage) int {
	return c.inner.CountTokens(messages)
}

// Limit returns the configured token ceiling
func (c *LimitedChat) Limit() int {
	return c.limit
}

// LimitedEmbedding rejects texts whose token count exceeds Limit
type LimitedEmbedding struct {
	inner Embedding
	limit int
}

// LimitEmbedding wraps inner so texts over limit tokens fail with ErrTokenLimitExceeded
func LimitEmbedding(inner Embedding, limit int) *LimitedEmbedding {
	return &LimitedEmbedding{inner: inner, limit: limit}
}

func (e *LimitedEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	if n := e.inner.CountTokens(text); n > e.limit {
		return nil, &TokenLimitError{Tokens: n, Limit: e.limit}
	}
	return e.inner.Embed(ctx, text)
}

func (e *LimitedEmbedding) CountTokens(text string) int {
	return e.inner.CountTokens(text)
}

// Limit returns the configured token ceiling
func (e *LimitedEmbedding) Limit() int {
	return e.limit
}
