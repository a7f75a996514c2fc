package workers

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// timelineBuilder orders document events chronologically and surfaces
// deadlines.
type timelineBuilder struct {
	llm driven.CompletionService
}

func newTimelineBuilder(llm driven.CompletionService) *mcp.Server {
	server := newServer(domain.CapabilityTimelineBuilder)
	w := &timelineBuilder{llm: llm}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "construct_timeline",
		Description: "Build chronological timeline from document",
	}, w.handleConstructTimeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "identify_deadlines",
		Description: "Identify critical deadlines and dates",
	}, w.handleIdentifyDeadlines)

	return server
}

func (w *timelineBuilder) handleConstructTimeline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Extract all dates and events. Build chronological timeline. Return as JSON array sorted by date."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, `{"timeline": []}`)), nil, nil
}

func (w *timelineBuilder) handleIdentifyDeadlines(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Identify critical deadlines, due dates, and time-sensitive obligations. Return as JSON."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    512,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, `{"deadlines": []}`)), nil, nil
}
