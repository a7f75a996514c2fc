package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// CheckComplianceInput is the input schema for the check_compliance tool.
type CheckComplianceInput struct {
	Text      string   `json:"text" jsonschema:"document text"`
	Standards []string `json:"standards" jsonschema:"standards to check"`
}

// legalAnalyzer checks documents against legal standards such as GDPR
// and HIPAA.
type legalAnalyzer struct {
	llm driven.CompletionService
}

func newLegalAnalyzer(llm driven.CompletionService) *mcp.Server {
	server := newServer(domain.CapabilityLegalAnalyzer)
	w := &legalAnalyzer{llm: llm}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_compliance",
		Description: "Check compliance with legal standards (GDPR, HIPAA, etc.)",
	}, w.handleCheckCompliance)

	return server
}

func (w *legalAnalyzer) handleCheckCompliance(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckComplianceInput,
) (*mcp.CallToolResult, any, error) {
	if input.Text == "" || len(input.Standards) == 0 {
		return nil, nil, errors.New("missing required arguments: text and standards")
	}

	// One model call per standard, results keyed by standard name.
	results := make(map[string]json.RawMessage, len(input.Standards))
	for _, standard := range input.Standards {
		system := fmt.Sprintf("Check compliance with %s. Return JSON with: compliant (boolean), score (1-100), issues (array), recommendations (array).", standard)

		out, err := w.llm.Complete(ctx, system, clip(input.Text, maxPromptChars), driven.CompleteOptions{
			Temperature:  0.1,
			MaxTokens:    512,
			JSONResponse: true,
		})
		if err != nil {
			return nil, nil, err
		}

		var parsed json.RawMessage
		if err := json.Unmarshal([]byte(orDefault(out, "{}")), &parsed); err != nil {
			return nil, nil, fmt.Errorf("parsing %s result: %w", standard, err)
		}
		results[standard] = parsed
	}

	payload, err := json.Marshal(map[string]any{"compliance": results})
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(payload)), nil, nil
}
