// ABOUTME: MCP tool definitions and registration for the shopping assistant server
// ABOUTME: Exposes chat sessions and product search as MCP tools
package mcp

import (
	"github.com/harper/shopassist/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// DefaultMaxResults is the search_products result count when none is given
const DefaultMaxResults = 5

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, sessions *session.Manager, searcher Searcher, logger *zap.Logger) *Handlers {
	handlers := NewHandlers(sessions, searcher, logger)

	// 1. chat - Send a message to a shopping assistant session
	server.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Send a message to the shopping assistant. Omit session_id to start a new conversation; the response carries the id to reuse.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "User message",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Existing conversation id (optional)",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.Chat)

	// 2. search_products - Nearest products by description similarity
	server.AddTool(mcp.Tool{
		Name:        "search_products",
		Description: "Search the product catalog by semantic similarity of product descriptions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What the customer is looking for",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     DefaultMaxResults,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchProducts)

	// 3. reset_conversation - Forget a session's history
	server.AddTool(mcp.Tool{
		Name:        "reset_conversation",
		Description: "Reset a conversation to its initial state, keeping the session id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation id to reset",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.ResetConversation)

	// 4. get_conversation - History of a session
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Get the current conversation history of a session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation id",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetConversation)

	// 5. end_conversation - Drop a session
	server.AddTool(mcp.Tool{
		Name:        "end_conversation",
		Description: "End a conversation and release its session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation id to end",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.EndConversation)

	// 6. list_conversations - Open sessions
	server.AddTool(mcp.Tool{
		Name:        "list_conversations",
		Description: "List open conversations with their turn counts.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListConversations)

	return handlers
}
