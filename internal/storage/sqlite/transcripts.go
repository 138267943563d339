// ABOUTME: Conversation transcript persistence for SQLite
// ABOUTME: Messages are appended per session with a monotonically increasing sequence number
package sqlite

import (
	"context"
	"fmt"

	"github.com/harper/shopassist/internal/models"
)

// TranscriptStore handles transcript persistence
type TranscriptStore struct {
	db *DB
}

// NewTranscriptStore creates a new TranscriptStore
func NewTranscriptStore(db *DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

// Append adds messages to the end of a session's transcript
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM transcript_messages WHERE session_id = ?`,
		sessionID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read transcript position: %w", err)
	}

	for i, m := range messages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transcript_messages (session_id, seq, role, content)
			VALUES (?, ?, ?, ?)
		`, sessionID, next+i, string(m.Role), m.Content)
		if err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	return tx.Commit()
}

// Get returns a session's transcript in order. Unknown sessions yield an empty slice.
func (s *TranscriptStore) Get(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT role, content
		FROM transcript_messages
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var (
			role    string
			content string
		)
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		messages = append(messages, models.ChatMessage{Role: models.Role(role), Content: content})
	}
	return messages, rows.Err()
}

// Sessions lists the ids of every stored transcript
func (s *TranscriptStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT session_id FROM transcript_messages
		GROUP BY session_id
		ORDER BY MIN(created_at) ASC, session_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a session's transcript
func (s *TranscriptStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.conn.ExecContext(ctx, `DELETE FROM transcript_messages WHERE session_id = ?`, sessionID)
	return err
}
