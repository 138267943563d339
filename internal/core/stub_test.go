// ABOUTME: Scripted chat, embedding and index stubs for agent tests
// ABOUTME: The chat stub routes each prompt by kind and records every outgoing conversation
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/storage"
)

type scriptedChat struct {
	decision string
	query    string
	answer   string

	failOn string // "decide", "compose" or "answer"

	gateCalls    [][]models.ChatMessage
	composeCalls [][]models.ChatMessage
	answerCalls  [][]models.ChatMessage
}

var errStubBackend = errors.New("stub backend down")

func (s *scriptedChat) Chat(ctx context.Context, messages []models.ChatMessage) (models.ChatMessage, error) {
	sent := models.CloneHistory(messages)
	last := messages[len(messages)-1].Content

	switch {
	case len(messages) == 1 && strings.Contains(last, "Do we need to search the database"):
		s.gateCalls = append(s.gateCalls, sent)
		if s.failOn == "decide" {
			return models.ChatMessage{}, errStubBackend
		}
		return models.NewAssistantMessage(s.decision), nil
	case len(messages) == 1 && strings.Contains(last, "Construct a query"):
		s.composeCalls = append(s.composeCalls, sent)
		if s.failOn == "compose" {
			return models.ChatMessage{}, errStubBackend
		}
		return models.NewAssistantMessage(s.query), nil
	default:
		s.answerCalls = append(s.answerCalls, sent)
		if s.failOn == "answer" {
			return models.ChatMessage{}, errStubBackend
		}
		return models.NewAssistantMessage(s.answer), nil
	}
}

func (s *scriptedChat) CountTokens(messages []models.ChatMessage) int {
	return len(messages)
}

type mapEmbedding struct {
	vectors map[string][]float64
	texts   []string
}

func (m *mapEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	m.texts = append(m.texts, text)
	v, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("no vector for " + text)
	}
	return v, nil
}

func (m *mapEmbedding) CountTokens(text string) int {
	return len(strings.Fields(text))
}

type countingIndex struct {
	labels []string
	ks     []int
}

func (c *countingIndex) Insert(records []storage.Record) error {
	return nil
}

func (c *countingIndex) Search(query []float64, k int) ([]string, error) {
	c.ks = append(c.ks, k)
	return c.labels, nil
}
