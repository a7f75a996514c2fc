package driven

import "context"

// VectorStore provides per-collection vector storage and similarity search.
// Backed by Qdrant; each document gets its own collection so deletion is a
// collection drop.
type VectorStore interface {
	// EnsureCollection creates a collection for vectors of the given
	// size if it does not already exist.
	EnsureCollection(ctx context.Context, name string, vectorSize int) error

	// Upsert writes points into a collection and waits for the write to
	// be acknowledged before returning.
	Upsert(ctx context.Context, collection string, points []VectorPoint) error

	// Search finds the topK nearest vectors by cosine similarity,
	// descending. A missing collection yields an empty result and
	// ok=false, not an error: the document is simply not indexed yet.
	Search(ctx context.Context, collection string, vector []float32, topK int) (hits []VectorHit, ok bool, err error)

	// DeleteCollection drops a collection and everything in it.
	DeleteCollection(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}

// VectorPoint is one stored vector with its payload.
type VectorPoint struct {
	// ID is unique within the collection.
	ID uint64

	// Vector is the embedding.
	Vector []float32

	// Payload is the stored chunk metadata.
	Payload VectorPayload
}

// VectorPayload is the chunk data stored alongside each vector.
type VectorPayload struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	ChunkIndex  int    `json:"chunk_index"`
}

// VectorHit is one similarity search result.
type VectorHit struct {
	// Score is the cosine similarity to the query.
	Score float64

	// Payload is the stored chunk data.
	Payload VectorPayload
}
