// ABOUTME: Export of conversation transcripts and the product catalog
// ABOUTME: Supports YAML, JSON and Markdown output to any writer
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/shopassist/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData is the complete exportable structure for one or more transcripts
type ExportData struct {
	Version     string             `yaml:"version" json:"version"`
	ExportedAt  string             `yaml:"exported_at" json:"exported_at"`
	Tool        string             `yaml:"tool" json:"tool"`
	Transcripts []ExportTranscript `yaml:"transcripts" json:"transcripts"`
}

// ExportTranscript is one session's messages
type ExportTranscript struct {
	SessionID string          `yaml:"session_id" json:"session_id"`
	Messages  []ExportMessage `yaml:"messages" json:"messages"`
}

// ExportMessage is a single role/content pair
type ExportMessage struct {
	Role    string `yaml:"role" json:"role"`
	Content string `yaml:"content" json:"content"`
}

// Export collects the transcripts of the given sessions, or every session when none are named
func (s *TranscriptStore) Export(ctx context.Context, sessionIDs ...string) (*ExportData, error) {
	if len(sessionIDs) == 0 {
		ids, err := s.Sessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		sessionIDs = ids
	}

	data := NewExportData()
	for _, id := range sessionIDs {
		messages, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript %s: %w", id, err)
		}
		data.Add(id, messages)
	}
	return data, nil
}

// NewExportData returns an empty export stamped with the current time
func NewExportData() *ExportData {
	return &ExportData{
		Version:     "1.0",
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Tool:        appName,
		Transcripts: []ExportTranscript{},
	}
}

// Add appends one session's messages
func (data *ExportData) Add(sessionID string, messages []models.ChatMessage) {
	t := ExportTranscript{SessionID: sessionID, Messages: make([]ExportMessage, len(messages))}
	for i, m := range messages {
		t.Messages[i] = ExportMessage{Role: string(m.Role), Content: m.Content}
	}
	data.Transcripts = append(data.Transcripts, t)
}

// FormatFromPath picks an export format from a file extension, defaulting to yaml
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "yaml"
	}
}

// Write encodes data in format ("yaml", "json" or "markdown")
func (data *ExportData) Write(w io.Writer, format string) error {
	switch format {
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case "markdown", "md":
		data.writeMarkdown(w)
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile writes data to path in the format implied by its extension
func (data *ExportData) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return data.Write(file, FormatFromPath(path))
}

func (data *ExportData) writeMarkdown(w io.Writer) {
	_, _ = fmt.Fprintf(w, "# Conversation Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	for _, t := range data.Transcripts {
		_, _ = fmt.Fprintf(w, "## Session %s\n\n", t.SessionID)
		for _, m := range t.Messages {
			_, _ = fmt.Fprintf(w, "**%s:** %s\n\n", markdownRole(m.Role), m.Content)
		}
		_, _ = fmt.Fprintln(w, "---")
		_, _ = fmt.Fprintln(w)
	}
}

func markdownRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
