package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates an MCP server exposing the knowledge base over stdio.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"raglet",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("raglet — question answering over a local document knowledge base."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask a question against the indexed documents and get an answer from the local model."),
			mcp.WithString("question", mcp.Description("The question to answer"), mcp.Required()),
			mcp.WithBoolean("useRAG", mcp.Description("Whether to retrieve document context before answering (default true)")),
		),
		mcpAsk(deps),
	)

	s.AddTool(
		mcp.NewTool("vector_stats",
			mcp.WithDescription("Report the size and readiness of the vector index."),
		),
		mcpVectorStats(deps),
	)

	return s
}

func mcpAsk(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		useRAG := req.GetBool("useRAG", true)

		result, err := deps.Answerer.Answer(ctx, question, useRAG)
		if err != nil {
			return mcpError(fmt.Sprintf("answer failed: %v", err)), nil
		}

		return mcpText(result.Reply), nil
	}
}

func mcpVectorStats(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := deps.Stats.Stats()

		b, err := json.Marshal(vectorStatsResponse{
			TotalVectors:     stats.Records,
			Files:            stats.FileSources,
			TopK:             deps.TopK,
			SupportedFormats: deps.SupportedFormats,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
