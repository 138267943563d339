// ABOUTME: Agent and vector index contracts for the shopping assistant
// ABOUTME: Hosts drive any Agent; retrieval agents search any VectorIndex
package core

import (
	"context"

	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/storage"
)

// DefaultSystemPrompt seeds every new conversation as a developer turn
const DefaultSystemPrompt = "You are an assistant for an e-commerce web site."

// DefaultK is the number of products folded into an augmented prompt
const DefaultK = 2

// Agent answers one user turn at a time and owns its conversation history
type Agent interface {
	Respond(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
	Reset()
	History() []models.ChatMessage
}

// VectorIndex is the insert and search surface of a vector store
type VectorIndex interface {
	Insert(records []storage.Record) error
	Search(query []float64, k int) ([]string, error)
}

var _ VectorIndex = (*storage.VectorStorage)(nil)

func seedHistory(systemPrompt string) []models.ChatMessage {
	if systemPrompt == "" {
		return nil
	}
	return []models.ChatMessage{models.NewDeveloperMessage(systemPrompt)}
}
