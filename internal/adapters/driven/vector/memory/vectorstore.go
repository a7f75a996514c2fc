// Package memory provides an in-memory vector store for testing and
// development without a running Qdrant.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// collection holds points for one document.
type collection struct {
	size   int
	points map[uint64]driven.VectorPoint
}

// VectorStore is an in-memory implementation of driven.VectorStore with
// real cosine scoring. Safe for concurrent use.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*collection),
	}
}

// EnsureCollection creates a collection if it does not already exist.
func (s *VectorStore) EnsureCollection(_ context.Context, name string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("memory: invalid vector size %d", vectorSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		s.collections[name] = &collection{
			size:   vectorSize,
			points: make(map[uint64]driven.VectorPoint),
		}
	}
	return nil
}

// Upsert writes points into a collection, replacing points with the same ID.
func (s *VectorStore) Upsert(_ context.Context, name string, points []driven.VectorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("memory: collection %s does not exist", name)
	}

	for _, p := range points {
		if len(p.Vector) != coll.size {
			return fmt.Errorf("memory: vector size %d does not match collection size %d", len(p.Vector), coll.size)
		}
		coll.points[p.ID] = p
	}
	return nil
}

// Search returns the topK points by cosine similarity, descending.
func (s *VectorStore) Search(_ context.Context, name string, vector []float32, topK int) ([]driven.VectorHit, bool, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[name]
	if !ok {
		return nil, false, nil
	}

	hits := make([]driven.VectorHit, 0, len(coll.points))
	for _, p := range coll.points {
		hits = append(hits, driven.VectorHit{
			Score:   cosineSimilarity(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, true, nil
}

// DeleteCollection drops a collection. Dropping a missing collection is
// not an error.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
