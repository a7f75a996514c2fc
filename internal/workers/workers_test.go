package workers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServer(t *testing.T) {
	llm := &mockCompletion{}

	t.Run("known capabilities", func(t *testing.T) {
		for _, name := range Names() {
			server, err := NewServer(name, llm)
			require.NoError(t, err, name)
			assert.NotNil(t, server, name)
		}
	})

	t.Run("unknown capability", func(t *testing.T) {
		server, err := NewServer("nonexistent", llm)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, domain.ErrCapabilityNotFound)
	})
}

func TestDocumentAnalyzer_analyzeDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("passes type into the system prompt", func(t *testing.T) {
		llm := &mockCompletion{response: `{"summary": "ok"}`}
		w := &documentAnalyzer{llm: llm}

		res, _, err := w.handleAnalyzeDocument(ctx, nil, AnalyzeDocumentInput{
			Text: "some contract text",
			Type: "Legal",
		})

		require.NoError(t, err)
		assert.Equal(t, `{"summary": "ok"}`, resultText(t, res))
		assert.Contains(t, llm.lastSystem, "Legal document analyzer")
		assert.Contains(t, llm.lastUser, "some contract text")
		assert.True(t, llm.lastOpts.JSONResponse)
		assert.Equal(t, 2048, llm.lastOpts.MaxTokens)
		assert.InDelta(t, 0.1, llm.lastOpts.Temperature, 1e-9)
	})

	t.Run("missing arguments", func(t *testing.T) {
		w := &documentAnalyzer{llm: &mockCompletion{}}

		_, _, err := w.handleAnalyzeDocument(ctx, nil, AnalyzeDocumentInput{Text: "text"})
		require.Error(t, err)

		_, _, err = w.handleAnalyzeDocument(ctx, nil, AnalyzeDocumentInput{Type: "Legal"})
		require.Error(t, err)
	})

	t.Run("empty model response falls back to empty object", func(t *testing.T) {
		w := &documentAnalyzer{llm: &mockCompletion{response: ""}}

		res, _, err := w.handleAnalyzeDocument(ctx, nil, AnalyzeDocumentInput{
			Text: "text",
			Type: "General",
		})

		require.NoError(t, err)
		assert.Equal(t, "{}", resultText(t, res))
	})

	t.Run("long documents are truncated", func(t *testing.T) {
		llm := &mockCompletion{response: "{}"}
		w := &documentAnalyzer{llm: llm}

		long := make([]byte, maxPromptChars*2)
		for i := range long {
			long[i] = 'a'
		}

		_, _, err := w.handleAnalyzeDocument(ctx, nil, AnalyzeDocumentInput{
			Text: string(long),
			Type: "General",
		})

		require.NoError(t, err)
		assert.LessOrEqual(t, len(llm.lastUser), maxPromptChars+len("Analyze this document:\n\n"))
	})
}

func TestEntityExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("extract_all_entities", func(t *testing.T) {
		llm := &mockCompletion{response: `{"people": ["Alice"]}`}
		w := &entityExtractor{llm: llm}

		res, _, err := w.handleExtractEntities(ctx, nil, DocumentTextInput{Text: "Alice met Bob"})

		require.NoError(t, err)
		assert.Equal(t, `{"people": ["Alice"]}`, resultText(t, res))
		assert.Contains(t, llm.lastSystem, "Extract all entities")
	})

	t.Run("empty response defaults", func(t *testing.T) {
		w := &entityExtractor{llm: &mockCompletion{}}

		res, _, err := w.handleExtractEntities(ctx, nil, DocumentTextInput{Text: "text"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"entities": {}}`, resultText(t, res))

		res, _, err = w.handleBuildRelationships(ctx, nil, DocumentTextInput{Text: "text"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"relationships": []}`, resultText(t, res))
	})

	t.Run("missing text", func(t *testing.T) {
		w := &entityExtractor{llm: &mockCompletion{}}
		_, _, err := w.handleExtractEntities(ctx, nil, DocumentTextInput{})
		require.Error(t, err)
	})
}

func TestTimelineBuilder(t *testing.T) {
	ctx := context.Background()

	t.Run("construct_timeline", func(t *testing.T) {
		llm := &mockCompletion{response: `{"timeline": [{"date": "2020-01-01"}]}`}
		w := &timelineBuilder{llm: llm}

		res, _, err := w.handleConstructTimeline(ctx, nil, DocumentTextInput{Text: "On Jan 1 2020..."})

		require.NoError(t, err)
		assert.Contains(t, resultText(t, res), "2020-01-01")
		assert.Contains(t, llm.lastSystem, "chronological timeline")
	})

	t.Run("identify_deadlines uses a smaller budget", func(t *testing.T) {
		llm := &mockCompletion{response: `{"deadlines": []}`}
		w := &timelineBuilder{llm: llm}

		_, _, err := w.handleIdentifyDeadlines(ctx, nil, DocumentTextInput{Text: "due by Friday"})

		require.NoError(t, err)
		assert.Equal(t, 512, llm.lastOpts.MaxTokens)
	})
}

func TestLegalAnalyzer_checkCompliance(t *testing.T) {
	ctx := context.Background()

	t.Run("one call per standard, keyed output", func(t *testing.T) {
		llm := &mockCompletion{response: `{"compliant": true, "score": 90}`}
		w := &legalAnalyzer{llm: llm}

		res, _, err := w.handleCheckCompliance(ctx, nil, CheckComplianceInput{
			Text:      "privacy policy text",
			Standards: []string{"GDPR", "HIPAA"},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, llm.calls)

		var out struct {
			Compliance map[string]json.RawMessage `json:"compliance"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.Contains(t, out.Compliance, "GDPR")
		assert.Contains(t, out.Compliance, "HIPAA")
	})

	t.Run("invalid model JSON is an error", func(t *testing.T) {
		w := &legalAnalyzer{llm: &mockCompletion{response: "not json"}}

		_, _, err := w.handleCheckCompliance(ctx, nil, CheckComplianceInput{
			Text:      "text",
			Standards: []string{"GDPR"},
		})
		require.Error(t, err)
	})

	t.Run("missing standards", func(t *testing.T) {
		w := &legalAnalyzer{llm: &mockCompletion{}}
		_, _, err := w.handleCheckCompliance(ctx, nil, CheckComplianceInput{Text: "text"})
		require.Error(t, err)
	})
}

func TestFactVerifier_verifyClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("document and claim in the user prompt", func(t *testing.T) {
		llm := &mockCompletion{response: `{"verdict": "SUPPORTED", "confidence": 0.9}`}
		w := &factVerifier{llm: llm}

		res, _, err := w.handleVerifyClaim(ctx, nil, VerifyClaimInput{
			Text:  "The contract was signed in March.",
			Claim: "The contract was signed.",
		})

		require.NoError(t, err)
		assert.Contains(t, resultText(t, res), "SUPPORTED")
		assert.Contains(t, llm.lastUser, "Document: The contract was signed in March.")
		assert.Contains(t, llm.lastUser, "Claim: The contract was signed.")
	})

	t.Run("missing claim", func(t *testing.T) {
		w := &factVerifier{llm: &mockCompletion{}}
		_, _, err := w.handleVerifyClaim(ctx, nil, VerifyClaimInput{Text: "text"})
		require.Error(t, err)
	})
}
