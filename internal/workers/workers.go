// Package workers implements the capability workers as MCP servers.
// Each worker exposes a small set of analysis tools backed by the
// completion service and is normally launched as a child process by the
// gateway, speaking MCP over stdio.
package workers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Version is reported by every worker during the MCP handshake.
const Version = "1.0.0"

// maxPromptChars caps how much document text is sent to the model in a
// single tool call.
const maxPromptChars = 10000

// NewServer builds the MCP server for the named capability.
func NewServer(name string, llm driven.CompletionService) (*mcp.Server, error) {
	switch name {
	case domain.CapabilityDocumentAnalyzer:
		return newDocumentAnalyzer(llm), nil
	case domain.CapabilityEntityExtractor:
		return newEntityExtractor(llm), nil
	case domain.CapabilityTimelineBuilder:
		return newTimelineBuilder(llm), nil
	case domain.CapabilityLegalAnalyzer:
		return newLegalAnalyzer(llm), nil
	case domain.CapabilityFactVerifier:
		return newFactVerifier(llm), nil
	default:
		return nil, fmt.Errorf("worker %q: %w", name, domain.ErrCapabilityNotFound)
	}
}

// Run serves the named capability over stdio until the context is
// cancelled or the peer disconnects.
func Run(ctx context.Context, name string, llm driven.CompletionService) error {
	server, err := NewServer(name, llm)
	if err != nil {
		return err
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}

// Names lists all capabilities this binary can serve.
func Names() []string {
	return []string{
		domain.CapabilityDocumentAnalyzer,
		domain.CapabilityEntityExtractor,
		domain.CapabilityTimelineBuilder,
		domain.CapabilityLegalAnalyzer,
		domain.CapabilityFactVerifier,
	}
}

// newServer creates an MCP server shell for a worker.
func newServer(name string) *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: Version,
	}, nil)
}

// clip truncates s to at most n bytes.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// orDefault substitutes fallback when the model returned nothing.
func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// textResult wraps a raw model response as a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
