// ABOUTME: Tests for transcript persistence and export
// ABOUTME: Verifies ordering across appends, isolation between sessions, and export formats
package sqlite

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/shopassist/internal/models"
	"gopkg.in/yaml.v3"
)

func TestTranscriptStore_AppendAndGet(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t))
	ctx := context.Background()

	_ = store.Append(ctx, "s1", models.NewUserMessage("hi"), models.NewAssistantMessage("hello"))
	_ = store.Append(ctx, "s2", models.NewUserMessage("other"))
	if err := store.Append(ctx, "s1", models.NewUserMessage("backpacks?")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []string{"hi", "hello", "backpacks?"}
	if len(got) != len(want) {
		t.Fatalf("len(Get()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Content != want[i] {
			t.Errorf("Get()[%d] = %q, want %q", i, got[i].Content, want[i])
		}
	}
	if got[1].Role != models.RoleAssistant {
		t.Errorf("Get()[1].Role = %s, want assistant", got[1].Role)
	}
}

func TestTranscriptStore_SessionsAndDelete(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t))
	ctx := context.Background()
	_ = store.Append(ctx, "a", models.NewUserMessage("1"))
	_ = store.Append(ctx, "b", models.NewUserMessage("2"))

	ids, err := store.Sessions(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("Sessions() = %v, %v", ids, err)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, _ := store.Get(ctx, "a")
	if len(got) != 0 {
		t.Errorf("Get() after Delete = %+v", got)
	}
	ids, _ = store.Sessions(ctx)
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("Sessions() after Delete = %v", ids)
	}
}

func TestTranscriptStore_AppendNothing(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t))
	if err := store.Append(context.Background(), "s"); err != nil {
		t.Errorf("Append() with no messages error = %v", err)
	}
}

func exportFixture(t *testing.T) *ExportData {
	t.Helper()
	store := NewTranscriptStore(newTestDB(t))
	ctx := context.Background()
	_ = store.Append(ctx, "s1", models.NewUserMessage("Any jackets?"), models.NewAssistantMessage("Yes, the cotton jacket."))

	data, err := store.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	return data
}

func TestExport_Formats(t *testing.T) {
	data := exportFixture(t)

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := data.Write(&buf, "yaml"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		var decoded ExportData
		if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("yaml.Unmarshal() error = %v", err)
		}
		if len(decoded.Transcripts) != 1 || len(decoded.Transcripts[0].Messages) != 2 {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := data.Write(&buf, "json"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		var decoded ExportData
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if decoded.Tool != "shopassist" || decoded.Transcripts[0].SessionID != "s1" {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := data.Write(&buf, "markdown"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"## Session s1", "**User:** Any jackets?", "**Assistant:** Yes, the cotton jacket."} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := data.Write(&bytes.Buffer{}, "xml"); err == nil {
			t.Error("Write() should reject unknown formats")
		}
	})
}

func TestExport_WriteFile(t *testing.T) {
	data := exportFixture(t)
	path := filepath.Join(t.TempDir(), "out", "transcript.md")

	if err := data.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.json":     "json",
		"a.md":       "markdown",
		"a.MARKDOWN": "markdown",
		"a.yaml":     "yaml",
		"a":          "yaml",
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
