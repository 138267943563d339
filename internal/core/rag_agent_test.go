// ABOUTME: Tests for RAGAgent routing, history bookkeeping and reset behavior
// ABOUTME: Uses scripted backends and a real vector store for the end-to-end search path
package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/storage"
	"go.uber.org/zap/zaptest"
)

func TestNewRAGAgent_SeedsDeveloperTurn(t *testing.T) {
	agent := NewRAGAgent(&scriptedChat{}, &mapEmbedding{}, &countingIndex{})

	history := agent.History()
	if len(history) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(history))
	}
	if history[0].Role != models.RoleDeveloper || history[0].Content != DefaultSystemPrompt {
		t.Errorf("seed turn = %+v", history[0])
	}
	if agent.K() != DefaultK {
		t.Errorf("K() = %d, want %d", agent.K(), DefaultK)
	}
}

func TestRAGAgent_DirectPathExcludesHistory(t *testing.T) {
	chat := &scriptedChat{decision: "no", answer: "Hello!"}
	agent := NewRAGAgent(chat, &mapEmbedding{}, &countingIndex{}, WithLogger(zaptest.NewLogger(t)))
	msg := models.NewUserMessage("Hi there")

	answer, err := agent.Respond(context.Background(), msg)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if answer.Content != "Hello!" || answer.Role != models.RoleAssistant {
		t.Errorf("Respond() = %+v", answer)
	}

	if len(chat.answerCalls) != 1 {
		t.Fatalf("answer calls = %d, want 1", len(chat.answerCalls))
	}
	sent := chat.answerCalls[0]
	if len(sent) != 1 || sent[0] != msg {
		t.Errorf("direct path sent %+v, want only the message", sent)
	}
	if len(chat.composeCalls) != 0 {
		t.Errorf("compose calls = %d, want 0", len(chat.composeCalls))
	}
}

func TestRAGAgent_SearchPathIncludesHistoryAndAugmentedTurn(t *testing.T) {
	chat := &scriptedChat{decision: "yes", query: "backpack", answer: "Try the Fjallraven."}
	embedding := &mapEmbedding{vectors: map[string][]float64{"backpack": {1, 0}}}
	index := &countingIndex{labels: []string{"Backpack A", "Backpack B", "Backpack C"}}
	agent := NewRAGAgent(chat, embedding, index, WithK(2), WithLogger(zaptest.NewLogger(t)))
	msg := models.NewUserMessage("Do you have backpacks?")

	if _, err := agent.Respond(context.Background(), msg); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	sent := chat.answerCalls[0]
	if len(sent) != 2 {
		t.Fatalf("search path sent %d turns, want 2 (seed + augmented)", len(sent))
	}
	if sent[0].Role != models.RoleDeveloper {
		t.Errorf("first turn role = %s, want developer", sent[0].Role)
	}
	augmented := sent[1]
	if augmented.Role != models.RoleUser {
		t.Errorf("augmented role = %s, want user", augmented.Role)
	}
	for _, want := range []string{"Do you have backpacks?", "Backpack A\n\nBackpack B"} {
		if !strings.Contains(augmented.Content, want) {
			t.Errorf("augmented turn missing %q:\n%s", want, augmented.Content)
		}
	}
	if strings.Contains(augmented.Content, "Backpack C") {
		t.Error("augmented turn should hold at most k results")
	}

	if len(index.ks) != 1 || index.ks[0] != 2 {
		t.Errorf("index searched with k = %v, want [2]", index.ks)
	}
	if len(embedding.texts) != 1 || embedding.texts[0] != "backpack" {
		t.Errorf("embedded texts = %v, want [backpack]", embedding.texts)
	}
}

func TestRAGAgent_ComposeSeesHistoryAndMessage(t *testing.T) {
	chat := &scriptedChat{decision: "yes", query: "q", answer: "a"}
	embedding := &mapEmbedding{vectors: map[string][]float64{"q": {1}}}
	agent := NewRAGAgent(chat, embedding, &countingIndex{})

	_, _ = agent.Respond(context.Background(), models.NewUserMessage("first question"))
	_, _ = agent.Respond(context.Background(), models.NewUserMessage("second question"))

	prompt := chat.composeCalls[1][0].Content
	for _, want := range []string{"developer: " + DefaultSystemPrompt, "user: first question", "assistant: a", "user: second question"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("compose prompt missing %q", want)
		}
	}
}

func TestRAGAgent_HistoryGrowsByTwo(t *testing.T) {
	tests := []struct {
		name     string
		decision string
	}{
		{"direct", "no"},
		{"search", "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &scriptedChat{decision: tt.decision, query: "q", answer: "answer"}
			embedding := &mapEmbedding{vectors: map[string][]float64{"q": {1}}}
			agent := NewRAGAgent(chat, embedding, &countingIndex{labels: []string{"item"}})

			before := len(agent.History())
			msg := models.NewUserMessage("question")
			if _, err := agent.Respond(context.Background(), msg); err != nil {
				t.Fatalf("Respond() error = %v", err)
			}

			history := agent.History()
			if len(history) != before+2 {
				t.Fatalf("len(History()) = %d, want %d", len(history), before+2)
			}
			if history[len(history)-2] != msg {
				t.Errorf("second to last turn = %+v, want original message", history[len(history)-2])
			}
			if history[len(history)-1].Content != "answer" {
				t.Errorf("last turn = %+v, want answer", history[len(history)-1])
			}
		})
	}
}

func TestRAGAgent_ErrorsLeaveHistoryUnchanged(t *testing.T) {
	tests := []struct {
		name      string
		chat      *scriptedChat
		embedding *mapEmbedding
	}{
		{"decide fails", &scriptedChat{failOn: "decide"}, &mapEmbedding{}},
		{"compose fails", &scriptedChat{decision: "yes", failOn: "compose"}, &mapEmbedding{}},
		{"embed fails", &scriptedChat{decision: "yes", query: "unknown"}, &mapEmbedding{}},
		{"answer fails", &scriptedChat{decision: "no", failOn: "answer"}, &mapEmbedding{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewRAGAgent(tt.chat, tt.embedding, &countingIndex{})

			if _, err := agent.Respond(context.Background(), models.NewUserMessage("hi")); err == nil {
				t.Fatal("Respond() should fail")
			}
			if len(agent.History()) != 1 {
				t.Errorf("len(History()) = %d, want 1", len(agent.History()))
			}
		})
	}
}

func TestRAGAgent_SearchErrorPropagates(t *testing.T) {
	store, _ := storage.NewVectorStorage(3, 4)
	chat := &scriptedChat{decision: "yes", query: "q"}
	embedding := &mapEmbedding{vectors: map[string][]float64{"q": {1, 0}}}
	agent := NewRAGAgent(chat, embedding, store)

	_, err := agent.Respond(context.Background(), models.NewUserMessage("hi"))
	if !errors.Is(err, storage.ErrDimensionMismatch) {
		t.Errorf("Respond() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestRAGAgent_ResetRestoresSeed(t *testing.T) {
	chat := &scriptedChat{decision: "no", answer: "ok"}
	agent := NewRAGAgent(chat, &mapEmbedding{}, &countingIndex{})

	_, _ = agent.Respond(context.Background(), models.NewUserMessage("one"))
	agent.Reset()

	history := agent.History()
	if len(history) != 1 || history[0].Role != models.RoleDeveloper {
		t.Fatalf("History() after Reset = %+v, want seed turn only", history)
	}

	if _, err := agent.Respond(context.Background(), models.NewUserMessage("two")); err != nil {
		t.Fatalf("Respond() after Reset error = %v", err)
	}
	if len(agent.History()) != 3 {
		t.Errorf("len(History()) = %d, want 3", len(agent.History()))
	}
}

func TestRAGAgent_EmptySystemPrompt(t *testing.T) {
	chat := &scriptedChat{decision: "yes", query: "q", answer: "ok"}
	embedding := &mapEmbedding{vectors: map[string][]float64{"q": {1}}}
	agent := NewRAGAgent(chat, embedding, &countingIndex{}, WithSystemPrompt(""))

	if len(agent.History()) != 0 {
		t.Fatalf("History() = %+v, want empty", agent.History())
	}
	if _, err := agent.Respond(context.Background(), models.NewUserMessage("hi")); err != nil {
		t.Fatalf("Respond() on empty history error = %v", err)
	}
	agent.Reset()
	if len(agent.History()) != 0 {
		t.Errorf("History() after Reset = %+v, want empty", agent.History())
	}
}

func TestRAGAgent_FruitStore(t *testing.T) {
	store, err := storage.NewVectorStorage(3, 10)
	if err != nil {
		t.Fatalf("NewVectorStorage() error = %v", err)
	}
	_ = store.Insert([]storage.Record{
		{Label: "Apple", Vector: []float64{1, 1, 1}},
		{Label: "Melon", Vector: []float64{-1, -1, 1}},
	})

	chat := &scriptedChat{decision: "yes", query: "something like a melon", answer: "Here you go."}
	embedding := &mapEmbedding{vectors: map[string][]float64{"something like a melon": {-1, -0.3, 1}}}
	agent := NewRAGAgent(chat, embedding, store, WithK(1))

	if _, err := agent.Respond(context.Background(), models.NewUserMessage("Got melons?")); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	augmented := chat.answerCalls[0][len(chat.answerCalls[0])-1].Content
	if !strings.Contains(augmented, "Melon") || strings.Contains(augmented, "Apple") {
		t.Errorf("augmented turn = %q, want Melon only", augmented)
	}
}

func TestWithK_IgnoresNegative(t *testing.T) {
	agent := NewRAGAgent(&scriptedChat{}, &mapEmbedding{}, &countingIndex{}, WithK(-3))
	if agent.K() != DefaultK {
		t.Errorf("K() = %d, want %d", agent.K(), DefaultK)
	}
}
