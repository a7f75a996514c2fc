package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clearcut-labs/clearcut/internal/chunker"
	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// collectionPrefix namespaces per-document vector collections.
const collectionPrefix = "doc_"

// RAGService chunks, embeds and indexes document text, and retrieves the
// most relevant chunks for a query. Every document gets its own vector
// collection so removal is a single collection drop.
type RAGService struct {
	chunker  *chunker.Chunker
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
}

// NewRAGService creates a new RAG service.
func NewRAGService(ch *chunker.Chunker, embedder driven.EmbeddingService, vectors driven.VectorStore) *RAGService {
	return &RAGService{
		chunker:  ch,
		embedder: embedder,
		vectors:  vectors,
	}
}

// CollectionName returns the vector collection for a document.
func CollectionName(documentID string) string {
	return collectionPrefix + documentID
}

// Index splits the text into overlapping windows, embeds them in one
// ordered batch, and upserts them with offsets into the document's
// collection. The upsert waits for acknowledgement so a later search
// cannot miss freshly written points.
func (s *RAGService) Index(ctx context.Context, documentID, text string) (int, error) {
	start := time.Now()

	chunks := s.chunker.Split(documentID, text)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	collection := CollectionName(documentID)
	if err := s.vectors.EnsureCollection(ctx, collection, s.embedder.Dimensions()); err != nil {
		return 0, fmt.Errorf("creating collection %s: %w", collection, err)
	}

	points := make([]driven.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = driven.VectorPoint{
			ID:     uint64(c.Index),
			Vector: embeddings[i],
			Payload: driven.VectorPayload{
				Text:        c.Text,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
				ChunkIndex:  c.Index,
			},
		}
	}

	if err := s.vectors.Upsert(ctx, collection, points); err != nil {
		return 0, fmt.Errorf("upserting %d points: %w", len(points), err)
	}

	logger.Info("indexed document %s: %d chunks in %s", documentID, len(chunks), time.Since(start).Round(time.Millisecond))
	return len(chunks), nil
}

// Search embeds the query and returns the topK nearest chunks, highest
// score first. A document whose collection does not exist yet is reported
// as not indexed.
func (s *RAGService) Search(ctx context.Context, documentID, query string, topK int) ([]domain.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, ok, err := s.vectors.Search(ctx, CollectionName(documentID), vector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching document %s: %w", documentID, err)
	}
	if !ok {
		return nil, domain.ErrNotIndexed
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			Text:        hit.Payload.Text,
			StartOffset: hit.Payload.StartOffset,
			EndOffset:   hit.Payload.EndOffset,
			ChunkIndex:  hit.Payload.ChunkIndex,
			Score:       hit.Score,
		}
	}
	return results, nil
}

// FormatContext renders ranked results as a numbered context block. The
// numbering is positional and 1-based; citation markers in a generated
// answer resolve against the same list.
func (s *RAGService) FormatContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] %s [chars: %d-%d]", i+1, r.Text, r.StartOffset, r.EndOffset)
	}
	return strings.Join(parts, "\n\n")
}

// DeleteIndex drops the document's collection. Failures are logged and
// swallowed: a leaked collection is preferable to a delete that fails
// halfway.
func (s *RAGService) DeleteIndex(ctx context.Context, documentID string) {
	collection := CollectionName(documentID)
	if err := s.vectors.DeleteCollection(ctx, collection); err != nil {
		logger.Warn("failed to drop collection %s: %v", collection, err)
	}
}
