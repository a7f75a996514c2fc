package driving

import (
	"context"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// RAGService chunks, embeds, indexes and retrieves document text.
type RAGService interface {
	// Index splits the text into overlapping windows, embeds them in
	// order, and upserts them into the document's collection. Returns
	// the chunk count; the caller marks the document indexed.
	Index(ctx context.Context, documentID, text string) (int, error)

	// Search returns the topK most similar chunks, descending by score.
	// An unindexed document yields domain.ErrNotIndexed.
	Search(ctx context.Context, documentID, query string, topK int) ([]domain.SearchResult, error)

	// FormatContext renders ranked results as a numbered context block.
	// The numbering is positional and 1-based so citation markers can
	// invert it.
	FormatContext(results []domain.SearchResult) string

	// DeleteIndex drops the document's collection. Best effort.
	DeleteIndex(ctx context.Context, documentID string)
}
