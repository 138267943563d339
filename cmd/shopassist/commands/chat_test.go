// ABOUTME: Tests for the chat REPL loop and its slash commands
// ABOUTME: Drives chatLoop with scripted input against an echo agent

package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/shopassist/internal/core"
	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/session"
)

type echoAgent struct {
	history []models.ChatMessage
}

func (a *echoAgent) Respond(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	answer := models.NewAssistantMessage("echo: " + message.Content)
	a.history = append(a.history, message, answer)
	return answer, nil
}

func (a *echoAgent) Reset() { a.history = nil }

func (a *echoAgent) History() []models.ChatMessage { return models.CloneHistory(a.history) }

func runLoop(t *testing.T, input string) (string, *session.Manager, string) {
	t.Helper()
	originalQuiet := quiet
	quiet = true
	t.Cleanup(func() { quiet = originalQuiet })

	sessions := session.NewManager(func() core.Agent { return &echoAgent{} })
	s := sessions.Create()

	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader(input), &out, sessions, s.ID); err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}
	return out.String(), sessions, s.ID
}

func TestChatLoop_Answers(t *testing.T) {
	out, sessions, id := runLoop(t, "hello\n\nbackpacks?\n")

	for _, want := range []string{"echo: hello", "echo: backpacks?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, missing %q", out, want)
		}
	}
	history, _ := sessions.History(id)
	if len(history) != 4 {
		t.Errorf("len(history) = %d, want 4 (blank line skipped)", len(history))
	}
}

func TestChatLoop_ExitStopsReading(t *testing.T) {
	out, sessions, id := runLoop(t, "one\n/exit\ntwo\n")

	if strings.Contains(out, "echo: two") {
		t.Error("input after /exit should not be answered")
	}
	history, _ := sessions.History(id)
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2", len(history))
	}
}

func TestChatLoop_Reset(t *testing.T) {
	out, sessions, id := runLoop(t, "one\n/reset\ntwo\n")

	if !strings.Contains(out, "Conversation reset.") {
		t.Errorf("output = %q, missing reset notice", out)
	}
	history, _ := sessions.History(id)
	if len(history) != 2 || history[0].Content != "two" {
		t.Errorf("history = %v, want only the turn after reset", history)
	}
	transcript, _ := sessions.Transcript(id)
	if len(transcript) != 4 {
		t.Errorf("len(transcript) = %d, want 4 (kept across reset)", len(transcript))
	}
}

func TestChatLoop_History(t *testing.T) {
	out, _, _ := runLoop(t, "hello\n/history\n")

	if !strings.Contains(out, "user: hello") || !strings.Contains(out, "assistant: echo: hello") {
		t.Errorf("output = %q, missing history lines", out)
	}
}

func TestChatLoop_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	out, _, id := runLoop(t, "hello\n/save "+path+"\n")

	if !strings.Contains(out, "Saved 2 messages") {
		t.Errorf("output = %q, missing save notice", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), id) || !strings.Contains(string(data), `"content": "echo: hello"`) {
		t.Errorf("saved file = %s", data)
	}
}

func TestChatLoop_CommandErrors(t *testing.T) {
	out, _, _ := runLoop(t, "/save\n/bogus\n")

	if !strings.Contains(out, "usage: /save <file>") {
		t.Errorf("output = %q, missing usage error", out)
	}
	if !strings.Contains(out, "unknown command /bogus") {
		t.Errorf("output = %q, missing unknown command error", out)
	}
}

func TestChatLoop_CancelWhileWaitingForInput(t *testing.T) {
	originalQuiet := quiet
	quiet = true
	t.Cleanup(func() { quiet = originalQuiet })

	sessions := session.NewManager(func() core.Agent { return &echoAgent{} })
	s := sessions.Create()

	// Nothing is ever written, so a blocking read would never return
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out bytes.Buffer
		done <- chatLoop(ctx, pr, &out, sessions, s.ID)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("chatLoop() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chatLoop() did not return after cancellation")
	}
}
