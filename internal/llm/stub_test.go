// ABOUTME: Call-counting stub backends shared by llm package tests
// ABOUTME: Token counts come from a word tokenizer so limits are easy to reason about
package llm

import (
	"context"
	"errors"

	"github.com/harper/shopassist/internal/models"
)

type stubChat struct {
	reply string
	err   error
	calls int
}

func (s *stubChat) Chat(ctx context.Context, messages []models.ChatMessage) (models.ChatMessage, error) {
	s.calls++
	if s.err != nil {
		return models.ChatMessage{}, s.err
	}
	return models.NewAssistantMessage(s.reply), nil
}

func (s *stubChat) CountTokens(messages []models.ChatMessage) int {
	return countMessages(WordTokenizer{}, messages)
}

type stubEmbedding struct {
	vector []float64
	fail   bool
	calls  int
}

func (s *stubEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("embedding unavailable")
	}
	out := make([]float64, len(s.vector))
	copy(out, s.vector)
	return out, nil
}

func (s *stubEmbedding) CountTokens(text string) int {
	return WordTokenizer{}.Count(text)
}
