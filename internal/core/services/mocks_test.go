package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// mockToolCaller is a mock implementation of driven.ToolCaller keyed by
// "capability/tool". Safe for concurrent use.
type mockToolCaller struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	delay     time.Duration
	calls     []string
}

func newMockToolCaller() *mockToolCaller {
	return &mockToolCaller{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (m *mockToolCaller) CallTool(ctx context.Context, capability, tool string, _ map[string]any) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	key := capability + "/" + tool

	m.mu.Lock()
	m.calls = append(m.calls, key)
	err := m.errs[key]
	resp := m.responses[key]
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	return resp, nil
}

func (m *mockToolCaller) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.calls...)
	sort.Strings(out)
	return out
}

// mockDocStore is an in-memory mock of driven.DocumentStore and
// driven.ChatStore.
type mockDocStore struct {
	mu        sync.Mutex
	docs      map[string]*domain.Document
	messages  []domain.ChatMessage
	createErr error
	getErr    error
	appendErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]*domain.Document)}
}

func (m *mockDocStore) CreateDocument(_ context.Context, doc *domain.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context, ownerID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockDocStore) SetFastAnalysis(_ context.Context, id string, analysis json.RawMessage, status domain.DocStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.FastAnalysis = analysis
	doc.Status = status
	return nil
}

func (m *mockDocStore) SetDeepAnalysis(_ context.Context, id string, analysis *domain.DeepAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.DeepAnalysis = analysis
	return nil
}

func (m *mockDocStore) SetIndexState(_ context.Context, id string, chunkCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Indexed = true
	doc.ChunkCount = chunkCount
	return nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDocStore) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockDocStore) ListMessages(_ context.Context, documentID string) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range m.messages {
		if msg.DocumentID == documentID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockDocStore) doc(id string) *domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil
	}
	copied := *doc
	return &copied
}

func (m *mockDocStore) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// mockEmbedder is a mock implementation of driven.EmbeddingService that
// returns deterministic vectors.
type mockEmbedder struct {
	dims     int
	embedErr error
	batches  [][]string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 4}
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(len(text)%7) + float32(i)
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockVectorStore is an in-memory mock of driven.VectorStore. Search
// returns points in insertion order with descending fake scores.
type mockVectorStore struct {
	mu          sync.Mutex
	collections map[string][]driven.VectorPoint
	sizes       map[string]int
	upsertErr   error
	searchErr   error
	deleteErr   error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		collections: make(map[string][]driven.VectorPoint),
		sizes:       make(map[string]int),
	}
}

func (m *mockVectorStore) EnsureCollection(_ context.Context, name string, vectorSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = nil
		m.sizes[name] = vectorSize
	}
	return nil
}

func (m *mockVectorStore) Upsert(_ context.Context, collection string, points []driven.VectorPoint) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	m.collections[collection] = append(m.collections[collection], points...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, collection string, _ []float32, topK int) ([]driven.VectorHit, bool, error) {
	if m.searchErr != nil {
		return nil, false, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	points, ok := m.collections[collection]
	if !ok {
		return nil, false, nil
	}
	if topK > len(points) {
		topK = len(points)
	}
	hits := make([]driven.VectorHit, topK)
	for i := 0; i < topK; i++ {
		hits[i] = driven.VectorHit{
			Score:   1.0 - float64(i)*0.1,
			Payload: points[i].Payload,
		}
	}
	return hits, true, nil
}

func (m *mockVectorStore) DeleteCollection(_ context.Context, name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	delete(m.sizes, name)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockTokenStream feeds a fixed token sequence.
type mockTokenStream struct {
	ch  chan string
	err error
}

func newMockTokenStream(tokens []string, err error) *mockTokenStream {
	s := &mockTokenStream{ch: make(chan string, len(tokens)), err: err}
	for _, t := range tokens {
		s.ch <- t
	}
	close(s.ch)
	return s
}

func (s *mockTokenStream) Tokens() <-chan string { return s.ch }

func (s *mockTokenStream) Err() error { return s.err }

// mockCompletion is a mock implementation of driven.CompletionService.
type mockCompletion struct {
	mu         sync.Mutex
	response   string
	tokens     []string
	err        error
	streamErr  error
	delay      time.Duration
	lastSystem string
	lastUser   string
	lastOpts   driven.CompleteOptions
}

func (m *mockCompletion) Complete(ctx context.Context, system, user string, opts driven.CompleteOptions) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	m.lastSystem = system
	m.lastUser = user
	m.lastOpts = opts
	m.mu.Unlock()
	return m.response, m.err
}

func (m *mockCompletion) CompleteStream(_ context.Context, system, user string, opts driven.CompleteOptions) (driven.TokenStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.lastSystem = system
	m.lastUser = user
	m.lastOpts = opts
	m.mu.Unlock()
	return newMockTokenStream(m.tokens, m.streamErr), nil
}

func (m *mockCompletion) ModelName() string { return "mock-model" }

func (m *mockCompletion) Ping(_ context.Context) error { return nil }

func (m *mockCompletion) Close() error { return nil }

// mockDeepAnalyzer is a mock implementation of driving.DeepAnalyzer.
type mockDeepAnalyzer struct {
	mu       sync.Mutex
	analysis *domain.DeepAnalysis
	verify   json.RawMessage
	err      error
	ran      int
}

func (m *mockDeepAnalyzer) RunDeepAnalysis(_ context.Context, _ string, _ domain.DocType) (*domain.DeepAnalysis, error) {
	m.mu.Lock()
	m.ran++
	m.mu.Unlock()
	return m.analysis, m.err
}

func (m *mockDeepAnalyzer) VerifyClaim(_ context.Context, _, _ string) (json.RawMessage, error) {
	return m.verify, m.err
}

func (m *mockDeepAnalyzer) runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ran
}

// mockRAG is a mock implementation of driving.RAGService.
type mockRAG struct {
	mu         sync.Mutex
	chunkCount int
	results    []domain.SearchResult
	indexErr   error
	searchErr  error
	indexed    []string
	deleted    []string
}

func (m *mockRAG) Index(_ context.Context, documentID, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return 0, m.indexErr
	}
	m.indexed = append(m.indexed, documentID)
	return m.chunkCount, nil
}

func (m *mockRAG) Search(_ context.Context, _, _ string, _ int) ([]domain.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockRAG) FormatContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] %s [chars: %d-%d]", i+1, r.Text, r.StartOffset, r.EndOffset)
	}
	return joinParts(parts)
}

func (m *mockRAG) DeleteIndex(_ context.Context, documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, documentID)
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n\n"
		}
		out += p
	}
	return out
}
