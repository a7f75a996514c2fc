package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldPipeline := pipelineService
	oldChat := chatService
	oldDeep := deepService
	oldWired := wired

	pipeline := newMockPipeline()
	pipelineService = pipeline
	chatService = newMockChat()
	deepService = &mockDeep{}
	wired = true

	return func() {
		pipelineService = oldPipeline
		chatService = oldChat
		deepService = oldDeep
		wired = oldWired
	}
}

// sampleDocument is the canned document all mocks serve.
func sampleDocument() *domain.Document {
	return &domain.Document{
		ID:           "doc-1",
		OwnerID:      "local",
		FileName:     "contract.txt",
		FileSize:     64,
		MimeType:     "text/plain",
		DocType:      domain.DocTypeLegal,
		RawText:      "The tenant shall give sixty days notice before vacating.",
		Status:       domain.StatusCompleted,
		FastAnalysis: json.RawMessage(`{"summary":"a lease agreement"}`),
		Indexed:      true,
		ChunkCount:   3,
		CreatedAt:    time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
}

// ==================== Pipeline mock ====================

type mockPipeline struct {
	docs    map[string]*domain.Document
	deleted []string
}

var _ driving.DocumentPipeline = (*mockPipeline)(nil)

func newMockPipeline() *mockPipeline {
	doc := sampleDocument()
	return &mockPipeline{docs: map[string]*domain.Document{doc.ID: doc}}
}

func (m *mockPipeline) Analyze(_ context.Context, sub driving.Submission) (*driving.AnalyzeReceipt, error) {
	doc := sampleDocument()
	doc.ID = "doc-new"
	doc.FileName = sub.FileName
	doc.DocType = domain.ParseDocType(sub.DocType)
	doc.Indexed = false
	m.docs[doc.ID] = doc
	return &driving.AnalyzeReceipt{
		Document:         doc,
		FastAnalysis:     doc.FastAnalysis,
		FastAnalysisTime: "42ms",
	}, nil
}

func (m *mockPipeline) Get(_ context.Context, documentID, ownerID string) (*domain.Document, error) {
	doc, ok := m.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockPipeline) List(_ context.Context, ownerID string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (m *mockPipeline) Delete(_ context.Context, documentID, ownerID string) error {
	if _, err := m.Get(context.Background(), documentID, ownerID); err != nil {
		return err
	}
	delete(m.docs, documentID)
	m.deleted = append(m.deleted, documentID)
	return nil
}

// ==================== Chat mock ====================

type mockChat struct {
	tokens  []string
	results []domain.SearchResult
	history []domain.ChatMessage
	err     error
}

var _ driving.ChatService = (*mockChat)(nil)

func newMockChat() *mockChat {
	return &mockChat{
		tokens: []string{"Sixty days ", "notice is required ", "[1]."},
		results: []domain.SearchResult{
			{Text: "sixty days notice", StartOffset: 20, EndOffset: 37, ChunkIndex: 0, Score: 0.92},
		},
		history: []domain.ChatMessage{
			{
				ID: "msg-1", DocumentID: "doc-1", OwnerID: "local",
				Role: domain.RoleUser, Content: "what is the notice period?",
				CreatedAt: time.Date(2026, 2, 10, 9, 5, 0, 0, time.UTC),
			},
			{
				ID: "msg-2", DocumentID: "doc-1", OwnerID: "local",
				Role: domain.RoleAssistant, Content: "Sixty days [1].",
				Citations:       []domain.Citation{{Text: "sixty days notice", ChunkIndex: 0, Score: 0.92}},
				RetrievedChunks: 1,
				ResponseTime:    1200 * time.Millisecond,
				CreatedAt:       time.Date(2026, 2, 10, 9, 5, 2, 0, time.UTC),
			},
		},
	}
}

type cannedStream struct {
	tokens  chan string
	results []domain.SearchResult
	err     error
}

func (s *cannedStream) Tokens() <-chan string          { return s.tokens }
func (s *cannedStream) Err() error                     { return s.err }
func (s *cannedStream) Results() []domain.SearchResult { return s.results }

func (m *mockChat) Ask(_ context.Context, documentID, _, _ string) (driving.AnswerStream, error) {
	if m.err != nil {
		return nil, m.err
	}
	if documentID != "doc-1" {
		return nil, domain.ErrNotFound
	}
	stream := &cannedStream{tokens: make(chan string, len(m.tokens)), results: m.results}
	for _, tok := range m.tokens {
		stream.tokens <- tok
	}
	close(stream.tokens)
	return stream, nil
}

func (m *mockChat) AskAndWait(ctx context.Context, documentID, ownerID, question string) (*domain.ChatMessage, error) {
	if _, err := m.Ask(ctx, documentID, ownerID, question); err != nil {
		return nil, err
	}
	return &m.history[1], nil
}

func (m *mockChat) History(_ context.Context, documentID, _ string) ([]domain.ChatMessage, error) {
	if documentID != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return m.history, nil
}

// ==================== Deep analyzer mock ====================

type mockDeep struct {
	lastClaim string
}

var _ driving.DeepAnalyzer = (*mockDeep)(nil)

func (m *mockDeep) RunDeepAnalysis(context.Context, string, domain.DocType) (*domain.DeepAnalysis, error) {
	return &domain.DeepAnalysis{Results: map[string]domain.CapabilityResult{}}, nil
}

func (m *mockDeep) VerifyClaim(_ context.Context, _, claim string) (json.RawMessage, error) {
	m.lastClaim = claim
	return json.RawMessage(`{"verdict":"supported","confidence":0.9}`), nil
}
