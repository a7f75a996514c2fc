package driving

import (
	"context"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// Submission is a document handed to the pipeline. Text extraction happens
// upstream; the pipeline only ever sees raw text.
type Submission struct {
	OwnerID  string
	FileName string
	MimeType string
	DocType  string
	RawText  string
}

// AnalyzeReceipt is what the submitter gets back: the created document and
// the fast analysis, before either background job has settled.
type AnalyzeReceipt struct {
	Document     *domain.Document
	FastAnalysis []byte

	// FastAnalysisTime is the fast path's wall-clock duration.
	FastAnalysisTime string
}

// DocumentPipeline runs the dual-path analysis: a blocking fast analysis
// followed by detached deep-analysis and indexing jobs that each update the
// document record independently.
type DocumentPipeline interface {
	// Analyze persists the submission, runs the fast analysis, detaches
	// the deep and index jobs, and returns. Only a fast-path failure is
	// returned to the submitter.
	Analyze(ctx context.Context, sub Submission) (*AnalyzeReceipt, error)

	// Get retrieves a document, checking ownership.
	Get(ctx context.Context, documentID, ownerID string) (*domain.Document, error)

	// List returns an owner's documents, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Delete removes a document, its turns, and (best effort) its index.
	Delete(ctx context.Context, documentID, ownerID string) error
}
