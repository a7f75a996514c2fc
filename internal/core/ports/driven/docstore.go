package driven

import (
	"context"
	"encoding/json"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// DocumentStore persists documents. Backed by SQLite.
//
// The three Set* operations are independent partial updates to disjoint
// fields, keyed by document id. No caller ever needs to read-modify-write a
// field another producer owns, so the store requires no cross-producer
// locking or transactions; the writes commute.
type DocumentStore interface {
	// CreateDocument stores a new document in processing status.
	CreateDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns an owner's documents, newest first.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)

	// SetFastAnalysis writes the fast-path result and the final status.
	// Called exactly once per document.
	SetFastAnalysis(ctx context.Context, id string, analysis json.RawMessage, status domain.DocStatus) error

	// SetDeepAnalysis writes the settled capability aggregate.
	// Called at most once per document.
	SetDeepAnalysis(ctx context.Context, id string, analysis *domain.DeepAnalysis) error

	// SetIndexState marks the document indexed with its chunk count.
	// Called at most once per document.
	SetIndexState(ctx context.Context, id string, chunkCount int) error

	// DeleteDocument removes a document and its conversation turns.
	DeleteDocument(ctx context.Context, id string) error
}

// ChatStore persists conversation turns. Turns are append-only.
type ChatStore interface {
	// AppendMessage stores one conversation turn.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a document's turns in creation order.
	ListMessages(ctx context.Context, documentID string) ([]domain.ChatMessage, error)
}
