// Package qdrant provides a vector store adapter using the Qdrant REST
// API. It assumes cosine distance and one collection per document.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant client.
type Config struct {
	// URL is the Qdrant base URL (default: http://localhost:6333).
	URL string

	// APIKey authenticates against Qdrant. Optional for local instances.
	APIKey string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// VectorStore is a minimal REST client to Qdrant.
type VectorStore struct {
	client *http.Client
	url    string
	apiKey string
}

// NewVectorStore creates a new Qdrant vector store.
func NewVectorStore(cfg Config) *VectorStore {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorStore{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// EnsureCollection creates a cosine-distance collection of the given vector
// size if it does not already exist.
func (s *VectorStore) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("qdrant: invalid vector size %d", vectorSize)
	}

	status, _, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", name), nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", name), body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: creating collection %s failed (status %d): %s", name, status, respBody)
	}
	return nil
}

// Upsert writes points into a collection. The wait flag makes Qdrant
// acknowledge the write before responding, so a subsequent search sees the
// points.
func (s *VectorStore) Upsert(ctx context.Context, collection string, points []driven.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]any, len(points))
	for i, p := range points {
		qdrantPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	body := map[string]any{"points": qdrantPoints}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", collection), body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant: upsert into %s failed (status %d): %s", collection, status, respBody)
	}
	return nil
}

// searchResponse is the points/search response format.
type searchResponse struct {
	Result []struct {
		Score   float64              `json:"score"`
		Payload driven.VectorPayload `json:"payload"`
	} `json:"result"`
}

// Search finds the topK nearest vectors by cosine similarity. A missing
// collection yields ok=false: the document is not indexed yet.
func (s *VectorStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]driven.VectorHit, bool, error) {
	if topK <= 0 {
		topK = 5
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	status, respBody, err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", collection), body)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status >= 300 {
		return nil, false, fmt.Errorf("qdrant: search in %s failed (status %d): %s", collection, status, respBody)
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, false, fmt.Errorf("qdrant: decode search response: %w", err)
	}

	hits := make([]driven.VectorHit, len(resp.Result))
	for i, r := range resp.Result {
		hits[i] = driven.VectorHit{
			Score:   r.Score,
			Payload: r.Payload,
		}
	}
	return hits, true, nil
}

// DeleteCollection drops a collection and everything in it. Deleting a
// collection that does not exist is not an error.
func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	status, respBody, err := s.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", name), nil)
	if err != nil {
		return err
	}
	if status >= 300 && status != http.StatusNotFound {
		return fmt.Errorf("qdrant: deleting collection %s failed (status %d): %s", name, status, respBody)
	}
	return nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do performs one JSON request and returns the status code and body.
func (s *VectorStore) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("qdrant: read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
