// ABOUTME: RAGAgent answers shopping questions, searching the product store when the gate says so
// ABOUTME: Search turns see history plus an augmented question; direct turns see only the message
package core

import (
	"context"
	"fmt"

	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
	"go.uber.org/zap"
)

// RAGAgent orchestrates gate, composer, embedding and vector search for one conversation.
// It is not safe for concurrent use; callers serialise Respond and Reset.
type RAGAgent struct {
	chat      llm.Chat
	embedding llm.Embedding
	index     VectorIndex
	gate      *RetrievalGate
	composer  *QueryComposer

	k            int
	systemPrompt string
	history      []models.ChatMessage
	logger       *zap.Logger
}

// NewRAGAgent creates an agent whose history starts with the configured developer turn
func NewRAGAgent(chat llm.Chat, embedding llm.Embedding, index VectorIndex, opts ...Option) *RAGAgent {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &RAGAgent{
		chat:         chat,
		embedding:    embedding,
		index:        index,
		gate:         NewRetrievalGate(chat),
		composer:     NewQueryComposer(chat),
		k:            o.k,
		systemPrompt: o.systemPrompt,
		history:      seedHistory(o.systemPrompt),
		logger:       o.logger,
	}
}

// Respond answers message. On success history grows by exactly the message and the answer;
// on any error history is left untouched.
func (a *RAGAgent) Respond(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	needsSearch, err := a.gate.Decide(ctx, message)
	if err != nil {
		return models.ChatMessage{}, err
	}

	var outgoing []models.ChatMessage
	if needsSearch {
		results, err := a.search(ctx, message)
		if err != nil {
			return models.ChatMessage{}, err
		}
		outgoing = make([]models.ChatMessage, 0, len(a.history)+1)
		outgoing = append(outgoing, a.history...)
		outgoing = append(outgoing, models.NewUserMessage(renderAugmentedQuestion(message.Content, results)))
	} else {
		a.logger.Debug("answering directly")
		outgoing = []models.ChatMessage{message}
	}

	answer, err := a.chat.Chat(ctx, outgoing)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("answer: %w", err)
	}

	a.history = append(a.history, message, answer)
	return answer, nil
}

// search composes a query from the history and the new message, embeds it and
// returns at most k product labels
func (a *RAGAgent) search(ctx context.Context, message models.ChatMessage) ([]string, error) {
	conversation := make([]models.ChatMessage, 0, len(a.history)+1)
	conversation = append(conversation, a.history...)
	conversation = append(conversation, message)

	query, err := a.composer.Compose(ctx, conversation)
	if err != nil {
		return nil, err
	}

	vector, err := a.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := a.index.Search(vector, a.k)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if len(results) > a.k {
		results = results[:a.k]
	}

	a.logger.Debug("searched products",
		zap.String("query", query),
		zap.Int("k", a.k),
		zap.Int("hits", len(results)))
	return results, nil
}

// Reset restores the history to its construction-time state
func (a *RAGAgent) Reset() {
	a.history = seedHistory(a.systemPrompt)
}

// History returns a copy of the conversation so far
func (a *RAGAgent) History() []models.ChatMessage {
	return models.CloneHistory(a.history)
}

// K returns the configured result count
func (a *RAGAgent) K() int {
	return a.k
}
