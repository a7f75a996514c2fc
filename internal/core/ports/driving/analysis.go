package driving

import (
	"context"
	"encoding/json"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// DeepAnalyzer fans a document out to the capability workers and aggregates
// whatever settles.
type DeepAnalyzer interface {
	// RunDeepAnalysis issues every capability call for the document type
	// concurrently and waits for all of them to settle. The aggregate
	// holds one entry per attempted capability; individual failures are
	// error markers, never a returned error.
	RunDeepAnalysis(ctx context.Context, text string, docType domain.DocType) (*domain.DeepAnalysis, error)

	// VerifyClaim checks a single claim against the document text via
	// the fact-verifier capability.
	VerifyClaim(ctx context.Context, text, claim string) (json.RawMessage, error)
}
