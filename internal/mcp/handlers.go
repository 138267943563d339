// ABOUTME: MCP tool handler implementations for the shopping assistant server
// ABOUTME: Tool failures are returned as error results so the client sees the message
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/session"
	"github.com/harper/shopassist/internal/storage"
	"github.com/harper/shopassist/internal/util"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Searcher finds catalog products close to a free-text query
type Searcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]storage.SearchResult, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	sessions *session.Manager
	searcher Searcher
	logger   *zap.Logger
}

// NewHandlers creates handlers over sessions and searcher
func NewHandlers(sessions *session.Manager, searcher Searcher, logger *zap.Logger) *Handlers {
	return &Handlers{sessions: sessions, searcher: searcher, logger: util.OrNop(logger)}
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Chat handles the chat tool
func (h *Handlers) Chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	if message == "" {
		return mcp.NewToolResultError("message must not be empty"), nil
	}

	s, err := h.sessions.GetOrCreate(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}

	answer, err := h.sessions.Respond(ctx, s.ID, message)
	if err != nil {
		h.logger.Warn("chat tool failed", zap.String("session_id", s.ID), zap.Error(err))
		return mcp.NewToolResultError(describe(err)), nil
	}

	return jsonResult(chatResponse{SessionID: s.ID, Role: string(answer.Role), Content: answer.Content})
}

// SearchProducts handles the search_products tool
func (h *Handlers) SearchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", DefaultMaxResults)
	if maxResults < 0 {
		return mcp.NewToolResultError("max_results must not be negative"), nil
	}

	results, err := h.searcher.SearchProducts(ctx, query, maxResults)
	if err != nil {
		h.logger.Warn("search tool failed", zap.String("query", query), zap.Error(err))
		return mcp.NewToolResultError(describe(err)), nil
	}
	h.logger.Debug("search tool", zap.String("query", query), zap.Int("hits", len(results)))

	return jsonResult(map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// ResetConversation handles the reset_conversation tool
func (h *Handlers) ResetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	if err := h.sessions.Reset(id); err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	return jsonResult(map[string]interface{}{"session_id": id, "reset": true})
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	history, err := h.sessions.History(id)
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	if history == nil {
		history = []models.ChatMessage{}
	}
	return jsonResult(map[string]interface{}{"session_id": id, "messages": history})
}

// EndConversation handles the end_conversation tool
func (h *Handlers) EndConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	if err := h.sessions.Drop(id); err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	return jsonResult(map[string]interface{}{"session_id": id, "ended": true})
}

// ListConversations handles the list_conversations tool
func (h *Handlers) ListConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{"conversations": h.sessions.List()})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// describe turns known error kinds into messages a tool caller can act on
func describe(err error) string {
	var tokenErr *llm.TokenLimitError
	switch {
	case errors.As(err, &tokenErr):
		return fmt.Sprintf("message too long: %d tokens exceeds the limit of %d", tokenErr.Tokens, tokenErr.Limit)
	case errors.Is(err, session.ErrNotFound):
		return "unknown session_id"
	case errors.Is(err, storage.ErrInvalidK):
		return "max_results must not be negative"
	default:
		return err.Error()
	}
}
