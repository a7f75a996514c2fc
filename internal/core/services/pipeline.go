package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.DocumentPipeline = (*PipelineService)(nil)

// maxFastAnalysisChars caps the document text sent on the fast path.
const maxFastAnalysisChars = 50000

// PipelineService runs the dual-path document analysis. The fast path
// blocks the submitter under a hard timeout; the deep-analysis and indexing
// jobs detach onto the worker pool and update their own fields when they
// settle. A background failure is logged, never surfaced to the submitter.
type PipelineService struct {
	docs        driven.DocumentStore
	llm         driven.CompletionService
	deep        driving.DeepAnalyzer
	rag         driving.RAGService
	pool        *ants.Pool
	fastTimeout time.Duration
}

// NewPipelineService creates a new document pipeline.
func NewPipelineService(
	docs driven.DocumentStore,
	llm driven.CompletionService,
	deep driving.DeepAnalyzer,
	rag driving.RAGService,
	pool *ants.Pool,
	fastTimeout time.Duration,
) *PipelineService {
	return &PipelineService{
		docs:        docs,
		llm:         llm,
		deep:        deep,
		rag:         rag,
		pool:        pool,
		fastTimeout: fastTimeout,
	}
}

// Analyze persists the submission, runs the blocking fast analysis, then
// detaches the deep-analysis and indexing jobs and returns. The receipt
// carries the fast result; the background jobs land later via partial
// updates to their own fields.
func (s *PipelineService) Analyze(ctx context.Context, sub driving.Submission) (*driving.AnalyzeReceipt, error) {
	if strings.TrimSpace(sub.RawText) == "" {
		return nil, fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}
	if sub.OwnerID == "" {
		return nil, fmt.Errorf("%w: missing owner", domain.ErrInvalidInput)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		OwnerID:   sub.OwnerID,
		FileName:  sub.FileName,
		FileSize:  len(sub.RawText),
		MimeType:  sub.MimeType,
		DocType:   domain.ParseDocType(sub.DocType),
		RawText:   sub.RawText,
		Status:    domain.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	logger.Section("Fast Analysis")
	logger.Info("analyzing document %s (%s, %d bytes)", doc.ID, doc.DocType, doc.FileSize)

	start := time.Now()
	fastCtx, cancel := context.WithTimeout(ctx, s.fastTimeout)
	defer cancel()

	out, err := s.llm.Complete(fastCtx,
		fastAnalysisPrompt(doc.DocType),
		"Analyze this document:\n\n"+truncate(doc.RawText, maxFastAnalysisChars),
		driven.CompleteOptions{
			Temperature:  0.1,
			MaxTokens:    4096,
			JSONResponse: true,
		})
	if err != nil {
		if setErr := s.docs.SetFastAnalysis(context.WithoutCancel(ctx), doc.ID, domain.EmptyPayload, domain.StatusFailed); setErr != nil {
			logger.Warn("failed to mark document %s failed: %v", doc.ID, setErr)
		}
		return nil, fmt.Errorf("fast analysis: %w", err)
	}
	elapsed := time.Since(start)

	payload := safeParse(out)
	if err := s.docs.SetFastAnalysis(ctx, doc.ID, payload, domain.StatusCompleted); err != nil {
		return nil, fmt.Errorf("storing fast analysis: %w", err)
	}
	doc.FastAnalysis = payload
	doc.Status = domain.StatusCompleted

	logger.Info("fast analysis completed in %dms", elapsed.Milliseconds())

	// The background jobs outlive the request; they run under their own
	// contexts and write to fields the fast path never touches.
	s.detach("deep analysis", func() { s.runDeepAnalysis(doc.ID, doc.RawText, doc.DocType) })
	s.detach("indexing", func() { s.runIndexing(doc.ID, doc.RawText) })

	return &driving.AnalyzeReceipt{
		Document:         doc,
		FastAnalysis:     payload,
		FastAnalysisTime: fmt.Sprintf("%dms", elapsed.Milliseconds()),
	}, nil
}

// detach submits a background job to the pool, falling back to a plain
// goroutine when the pool rejects it.
func (s *PipelineService) detach(name string, job func()) {
	if s.pool != nil {
		if err := s.pool.Submit(job); err == nil {
			return
		}
		logger.Warn("%s job rejected by pool, running unpooled", name)
	}
	go job()
}

func (s *PipelineService) runDeepAnalysis(documentID, text string, docType domain.DocType) {
	ctx := context.Background()

	analysis, err := s.deep.RunDeepAnalysis(ctx, text, docType)
	if err != nil {
		logger.Warn("deep analysis for document %s failed: %v", documentID, err)
		return
	}
	if err := s.docs.SetDeepAnalysis(ctx, documentID, analysis); err != nil {
		logger.Warn("storing deep analysis for document %s failed: %v", documentID, err)
	}
}

func (s *PipelineService) runIndexing(documentID, text string) {
	ctx := context.Background()

	count, err := s.rag.Index(ctx, documentID, text)
	if err != nil {
		logger.Warn("indexing document %s failed: %v", documentID, err)
		return
	}
	if err := s.docs.SetIndexState(ctx, documentID, count); err != nil {
		logger.Warn("storing index state for document %s failed: %v", documentID, err)
	}
}

// Get retrieves a document. A document owned by somebody else is reported
// as not found.
func (s *PipelineService) Get(ctx context.Context, documentID, ownerID string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// List returns an owner's documents, newest first.
func (s *PipelineService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx, ownerID)
}

// Delete removes a document, its conversation and its vector collection.
func (s *PipelineService) Delete(ctx context.Context, documentID, ownerID string) error {
	if _, err := s.Get(ctx, documentID, ownerID); err != nil {
		return err
	}
	s.rag.DeleteIndex(ctx, documentID)
	return s.docs.DeleteDocument(ctx, documentID)
}

// truncate caps s at n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
