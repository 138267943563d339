// ABOUTME: QueryComposer turns a conversation into a search query for the vector store
// ABOUTME: The backend reply is used verbatim, including when it is empty
package core

import (
	"context"
	"fmt"

	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
)

// QueryComposer asks the chat backend to phrase a product search query
type QueryComposer struct {
	chat llm.Chat
}

// NewQueryComposer creates a composer backed by chat
func NewQueryComposer(chat llm.Chat) *QueryComposer {
	return &QueryComposer{chat: chat}
}

// Compose renders history as "role: content" blocks and returns the backend's query
func (c *QueryComposer) Compose(ctx context.Context, history []models.ChatMessage) (string, error) {
	reply, err := c.chat.Chat(ctx, []models.ChatMessage{
		models.NewUserMessage(renderComposeQuery(models.HistoryText(history))),
	})
	if err != nil {
		return "", fmt.Errorf("compose query: %w", err)
	}
	return reply.Content, nil
}
