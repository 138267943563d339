// ABOUTME: ChatMessage represents a single role-tagged turn of a conversation
// ABOUTME: Shared by the agent, the LLM backends and every host surface
package models

import (
	"fmt"
	"strings"
)

// Role identifies who authored a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleDeveloper, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is one conversation turn. Treat it as an immutable value.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user turn
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewDeveloperMessage creates a developer (system-level instruction) turn
func NewDeveloperMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleDeveloper, Content: content}
}

// NewAssistantMessage creates an assistant turn
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// String renders the message as "<role>: <content>"
func (m ChatMessage) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// HistoryText renders a conversation as "<role>: <content>" lines separated by blank lines
func HistoryText(history []ChatMessage) string {
	parts := make([]string, len(history))
	for i, m := range history {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n\n")
}

// CloneHistory returns an independent copy of a conversation
func CloneHistory(history []ChatMessage) []ChatMessage {
	if history == nil {
		return nil
	}
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out
}
