package workers

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// entityExtractor finds named entities and the relationships between them.
type entityExtractor struct {
	llm driven.CompletionService
}

func newEntityExtractor(llm driven.CompletionService) *mcp.Server {
	server := newServer(domain.CapabilityEntityExtractor)
	w := &entityExtractor{llm: llm}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_all_entities",
		Description: "Extract all entities (people, organizations, dates, amounts)",
	}, w.handleExtractEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_relationships",
		Description: "Build relationships between entities",
	}, w.handleBuildRelationships)

	return server
}

func (w *entityExtractor) handleExtractEntities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Extract all entities from the text. Return JSON with categories: people, organizations, dates, amounts, locations."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, `{"entities": {}}`)), nil, nil
}

func (w *entityExtractor) handleBuildRelationships(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Identify relationships between entities. Return as JSON array."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, `{"relationships": []}`)), nil, nil
}
