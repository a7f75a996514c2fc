package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// AnalyzeDocumentInput is the input schema for the analyze_document tool.
type AnalyzeDocumentInput struct {
	Text string `json:"text" jsonschema:"document text to analyze"`
	Type string `json:"type" jsonschema:"document type (Legal, Medical, General)"`
}

// DocumentTextInput is the input schema for tools that take only text.
type DocumentTextInput struct {
	Text string `json:"text" jsonschema:"document text"`
}

// documentAnalyzer produces whole-document analysis, clause extraction
// and risk assessment.
type documentAnalyzer struct {
	llm driven.CompletionService
}

func newDocumentAnalyzer(llm driven.CompletionService) *mcp.Server {
	server := newServer(domain.CapabilityDocumentAnalyzer)
	w := &documentAnalyzer{llm: llm}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Perform comprehensive document analysis",
	}, w.handleAnalyzeDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_clauses",
		Description: "Extract key clauses from legal documents",
	}, w.handleExtractClauses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "risk_assessment",
		Description: "Assess risk level in documents",
	}, w.handleRiskAssessment)

	return server
}

func (w *documentAnalyzer) handleAnalyzeDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeDocumentInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" || input.Type == "" {
		return nil, nil, errors.New("missing required arguments: text and type")
	}

	system := fmt.Sprintf("You are a %s document analyzer. Provide detailed analysis in JSON format.", input.Type)
	user := "Analyze this document:\n\n" + clip(input.Text, maxPromptChars)

	out, err := w.llm.Complete(ctx, system, user, driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    2048,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, "{}")), nil, nil
}

func (w *documentAnalyzer) handleExtractClauses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Extract all important clauses from the legal document. Return as JSON array."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, "{}")), nil, nil
}

func (w *documentAnalyzer) handleRiskAssessment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentTextInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" {
		return nil, nil, errors.New("missing required argument: text")
	}

	system := "Assess risk level (1-100) and identify risk factors. Return as JSON."

	out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    512,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, "{}")), nil, nil
}
