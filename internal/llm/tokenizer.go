// ABOUTME: Token counting for OpenAI models using tiktoken encodings
// ABOUTME: Falls back to a whitespace estimate when an encoding cannot be loaded
package llm

import (
	"fmt"
	"strings"

	"github.com/harper/shopassist/internal/models"
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts model tokens in a piece of text
type Tokenizer interface {
	Count(text string) int
}

// TiktokenTokenizer counts tokens with the BPE encoding of a specific model
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer loads the encoding used by model
func NewTokenizer(model string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Newer model names may be unknown to the encoding table
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load encoding for %s: %w", model, err)
		}
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// WordTokenizer approximates tokens as whitespace-separated words
type WordTokenizer struct{}

func (WordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

// countMessages measures a conversation as the contents joined by single spaces
func countMessages(tok Tokenizer, messages []models.ChatMessage) int {
	if len(messages) == 0 {
		return 0
	}
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return tok.Count(strings.Join(parts, " "))
}
