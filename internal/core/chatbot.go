// ABOUTME: ChatBot is a plain conversational agent with no product retrieval
// ABOUTME: Every turn is answered with the full history
package core

import (
	"context"
	"fmt"

	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
	"go.uber.org/zap"
)

// ChatBot forwards the whole conversation to the chat backend
type ChatBot struct {
	chat         llm.Chat
	systemPrompt string
	history      []models.ChatMessage
	logger       *zap.Logger
}

// NewChatBot creates a bot whose history starts with the configured developer turn.
// WithK has no effect.
func NewChatBot(chat llm.Chat, opts ...Option) *ChatBot {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ChatBot{
		chat:         chat,
		systemPrompt: o.systemPrompt,
		history:      seedHistory(o.systemPrompt),
		logger:       o.logger,
	}
}

// Respond answers message with the full history; history is untouched on error
func (b *ChatBot) Respond(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	outgoing := make([]models.ChatMessage, 0, len(b.history)+1)
	outgoing = append(outgoing, b.history...)
	outgoing = append(outgoing, message)

	answer, err := b.chat.Chat(ctx, outgoing)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("answer: %w", err)
	}
	b.logger.Debug("answered", zap.Int("history", len(outgoing)))

	b.history = append(b.history, message, answer)
	return answer, nil
}

// Reset restores the history to its construction-time state
func (b *ChatBot) Reset() {
	b.history = seedHistory(b.systemPrompt)
}

// History returns a copy of the conversation so far
func (b *ChatBot) History() []models.ChatMessage {
	return models.CloneHistory(b.history)
}
