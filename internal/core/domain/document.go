package domain

import (
	"encoding/json"
	"time"
)

// DocType classifies a document and selects the analysis plan.
// The set is closed; unknown values fall back to DocTypeGeneral.
type DocType string

const (
	DocTypeLegal   DocType = "Legal"
	DocTypeMedical DocType = "Medical"
	DocTypeGeneral DocType = "General"
)

// ParseDocType maps a user-supplied type tag onto the closed set.
func ParseDocType(s string) DocType {
	switch DocType(s) {
	case DocTypeLegal:
		return DocTypeLegal
	case DocTypeMedical:
		return DocTypeMedical
	default:
		return DocTypeGeneral
	}
}

// DocStatus is the user-visible lifecycle state of a document.
type DocStatus string

const (
	// StatusProcessing is set at submission, before the fast analysis lands.
	StatusProcessing DocStatus = "processing"

	// StatusCompleted is set by the fast path. Background producers never
	// change it again.
	StatusCompleted DocStatus = "completed"

	// StatusFailed is set only when the fast path itself fails.
	StatusFailed DocStatus = "failed"
)

// Document is the central mutable aggregate. Identity and the raw text are
// immutable after creation; FastAnalysis, DeepAnalysis and the index state are
// each written exactly once, by three independent producers, to disjoint
// fields. Readers must treat a nil field as "not yet available", never as a
// failure.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID identifies the submitting user.
	OwnerID string

	// FileName is the original upload name.
	FileName string

	// FileSize is the raw text length in bytes.
	FileSize int

	// MimeType is the source mime type as declared by the uploader.
	MimeType string

	// DocType selects the analysis plan (Legal, Medical, General).
	DocType DocType

	// RawText is the extracted document text. Immutable.
	RawText string

	// Status is the user-visible lifecycle state.
	Status DocStatus

	// FastAnalysis is the structured result of the synchronous analysis
	// call. Written once by the fast path.
	FastAnalysis json.RawMessage

	// DeepAnalysis is the aggregate of the background capability fan-out.
	// Nil until the orchestrator job settles; may carry per-capability
	// error markers.
	DeepAnalysis *DeepAnalysis

	// Indexed reports whether the RAG index job completed. ChunkCount is
	// only meaningful when Indexed is true.
	Indexed    bool
	ChunkCount int

	// CreatedAt is when the document was submitted.
	CreatedAt time.Time

	// UpdatedAt is bumped by every producer write.
	UpdatedAt time.Time
}

// Queryable reports whether chat and retrieval may run against the document.
// It depends only on the index state, not on deep analysis.
func (d *Document) Queryable() bool {
	return d.Indexed
}

// Chunk is a contiguous slice of a document's raw text, the retrieval unit.
// Chunks are derived, immutable, and live only in the document's vector
// collection.
type Chunk struct {
	// DocumentID links to the owning document.
	DocumentID string

	// Text is the chunk content, RawText[StartOffset:EndOffset].
	Text string

	// StartOffset and EndOffset are byte offsets into the raw text.
	StartOffset int
	EndOffset   int

	// Index is the chunk's sequence position within the document.
	Index int
}

// SearchResult is one ranked hit from semantic retrieval.
type SearchResult struct {
	Text        string
	StartOffset int
	EndOffset   int
	ChunkIndex  int

	// Score is the cosine similarity to the query, descending across a
	// result list.
	Score float64
}
