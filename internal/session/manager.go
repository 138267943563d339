// ABOUTME: Session manager owning one agent per conversation
// ABOUTME: Serialises turns within a session while separate sessions run in parallel
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/shopassist/internal/core"
	"github.com/harper/shopassist/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or dropped session ids
var ErrNotFound = errors.New("session not found")

// Factory builds a fresh agent for a new session
type Factory func() core.Agent

// Recorder persists exchanged messages
type Recorder interface {
	Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error
}

// Session is one conversation with its own agent
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	agent      core.Agent
	transcript []models.ChatMessage
	turns      int
}

// Info is a read-only summary of a session
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Turns     int       `json:"turns"`
}

// Manager creates, looks up and drops sessions
type Manager struct {
	factory  Factory
	recorder Recorder
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Manager
type Option func(*Manager)

// WithRecorder persists every successful exchange
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLogger sets the manager's logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager that builds agents with factory
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		logger:   zap.NewNop(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session with a freshly seeded agent
func (m *Manager) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		agent:     m.factory(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session with id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// GetOrCreate returns the session with id, or a new session when id is empty
func (m *Manager) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return m.Create(), nil
	}
	return m.Get(id)
}

// Drop ends a session and releases its agent
func (m *Manager) Drop(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Info("session dropped", zap.String("session_id", id))
	return nil
}

// List returns summaries of every live session, oldest first
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]Info, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Respond sends a user message to the session's agent
func (m *Manager) Respond(ctx context.Context, id, content string) (models.ChatMessage, error) {
	s, err := m.Get(id)
	if err != nil {
		return models.ChatMessage{}, err
	}

	message := models.NewUserMessage(content)
	answer, err := s.respond(ctx, message)
	if err != nil {
		m.logger.Warn("respond failed", zap.String("session_id", id), zap.Error(err))
		return models.ChatMessage{}, err
	}

	if m.recorder != nil {
		if err := m.recorder.Append(ctx, id, message, answer); err != nil {
			m.logger.Warn("failed to record transcript", zap.String("session_id", id), zap.Error(err))
		}
	}
	return answer, nil
}

// Reset restores the session's agent to its initial history
func (m *Manager) Reset(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.agent.Reset()
	s.mu.Unlock()

	m.logger.Info("session reset", zap.String("session_id", id))
	return nil
}

// History returns the agent's current conversation history
func (m *Manager) History(id string) ([]models.ChatMessage, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.History(), nil
}

// Transcript returns every message exchanged in the session, including turns before a reset
func (m *Manager) Transcript(id string) ([]models.ChatMessage, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneHistory(s.transcript), nil
}

func (s *Session) respond(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.agent.Respond(ctx, message)
	if err != nil {
		return models.ChatMessage{}, err
	}
	s.transcript = append(s.transcript, message, answer)
	s.turns++
	return answer, nil
}

// Info returns a summary of the session
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{ID: s.ID, CreatedAt: s.CreatedAt, Turns: s.turns}
}
