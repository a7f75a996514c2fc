package workers

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// VerifyClaimInput is the input schema for the verify_claim tool.
type VerifyClaimInput struct {
	Text  string `json:"text" jsonschema:"document text"`
	Claim string `json:"claim" jsonschema:"claim to verify"`
}

// factVerifier checks claims against the document text.
type factVerifier struct {
	llm driven.CompletionService
}

func newFactVerifier(llm driven.CompletionService) *mcp.Server {
	server := newServer(domain.CapabilityFactVerifier)
	w := &factVerifier{llm: llm}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "verify_claim",
		Description: "Verify if a claim is supported by document",
	}, w.handleVerifyClaim)

	return server
}

func (w *factVerifier) handleVerifyClaim(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VerifyClaimInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" || input.Claim == "" {
		return nil, nil, errors.New("missing required arguments: text and claim")
	}

	system := "Verify the claim against the document. Return JSON with: verdict (SUPPORTED/NOT_SUPPORTED/PARTIAL), confidence (0-1), evidence (array of text excerpts)."
	user := "Document: " + clip(input.Text, 8000) + "\n\nClaim: " + input.Claim

	out, err := w.llm.Complete(ctx, system, user, driven.CompleteOptions{
		Temperature:  0.1,
		MaxTokens:    1024,
		JSONResponse: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(orDefault(out, "{}")), nil, nil
}
