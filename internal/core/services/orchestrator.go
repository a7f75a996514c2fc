package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure OrchestratorService implements the interface.
var _ driving.DeepAnalyzer = (*OrchestratorService)(nil)

// ComplianceStandards are checked for every legal document.
var ComplianceStandards = []string{"GDPR", "HIPAA"}

// capabilityCall is one planned worker invocation.
type capabilityCall struct {
	capability string
	tool       string
	args       map[string]any
}

// OrchestratorService fans a document out to the capability workers
// concurrently and aggregates every settled result into one report.
type OrchestratorService struct {
	tools driven.ToolCaller
}

// NewOrchestratorService creates a new deep-analysis orchestrator.
func NewOrchestratorService(tools driven.ToolCaller) *OrchestratorService {
	return &OrchestratorService{tools: tools}
}

// plan selects the capability calls for a document type. Every document
// gets the base analysis trio; legal documents additionally get a
// compliance check.
func plan(text string, docType domain.DocType) []capabilityCall {
	calls := []capabilityCall{
		{
			capability: domain.CapabilityDocumentAnalyzer,
			tool:       "analyze_document",
			args:       map[string]any{"text": text, "type": string(docType)},
		},
		{
			capability: domain.CapabilityEntityExtractor,
			tool:       "extract_all_entities",
			args:       map[string]any{"text": text},
		},
		{
			capability: domain.CapabilityTimelineBuilder,
			tool:       "construct_timeline",
			args:       map[string]any{"text": text},
		},
	}

	if docType == domain.DocTypeLegal {
		calls = append(calls, capabilityCall{
			capability: domain.CapabilityLegalAnalyzer,
			tool:       "check_compliance",
			args:       map[string]any{"text": text, "standards": ComplianceStandards},
		})
	}

	return calls
}

// RunDeepAnalysis dispatches all planned calls at once and waits for every
// one of them to settle. A failed call becomes an error marker under its
// capability key; it never aborts the other calls.
func (s *OrchestratorService) RunDeepAnalysis(ctx context.Context, text string, docType domain.DocType) (*domain.DeepAnalysis, error) {
	calls := plan(text, docType)
	start := time.Now()

	logger.Section("Deep Analysis")
	logger.Info("dispatching %d capability calls for %s document", len(calls), docType)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]domain.CapabilityResult, len(calls))
	)

	for _, call := range calls {
		wg.Add(1)
		go func(call capabilityCall) {
			defer wg.Done()

			result := s.invoke(ctx, call)

			mu.Lock()
			results[call.capability] = result
			mu.Unlock()
		}(call)
	}
	wg.Wait()

	analysis := &domain.DeepAnalysis{
		Results: results,
		Elapsed: time.Since(start),
	}

	logger.Info("deep analysis settled: %d/%d capabilities succeeded in %s",
		analysis.Succeeded(), len(calls), analysis.Elapsed.Round(time.Millisecond))

	return analysis, nil
}

// invoke runs one capability call and settles it into a result.
func (s *OrchestratorService) invoke(ctx context.Context, call capabilityCall) domain.CapabilityResult {
	text, err := s.tools.CallTool(ctx, call.capability, call.tool, call.args)
	if err != nil {
		logger.Warn("capability %s failed: %v", call.capability, err)
		return domain.CapabilityResult{Err: err.Error()}
	}
	return domain.CapabilityResult{Payload: safeParse(text)}
}

// VerifyClaim checks a single claim against the document text.
func (s *OrchestratorService) VerifyClaim(ctx context.Context, text, claim string) (json.RawMessage, error) {
	out, err := s.tools.CallTool(ctx, domain.CapabilityFactVerifier, "verify_claim", map[string]any{
		"text":  text,
		"claim": claim,
	})
	if err != nil {
		return nil, err
	}
	return safeParse(out), nil
}

// safeParse returns the text as a raw JSON payload, or EmptyPayload when it
// does not parse. A worker that emits garbage costs one capability's
// payload, nothing more.
func safeParse(text string) json.RawMessage {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		logger.Warn("capability returned unparsable output, substituting empty payload")
		return domain.EmptyPayload
	}
	return json.RawMessage(trimmed)
}
