package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// chatSystemPrompt grounds the assistant in the retrieved context and asks
// for bracketed citation markers.
const chatSystemPrompt = "You are a document analysis assistant. Answer questions based ONLY on the provided context. Include citation numbers [1], [2] etc. when referencing specific parts."

// citationPattern matches bracketed citation markers in generated text.
var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// ChatService answers questions over indexed documents. Each answer is
// grounded on a fresh retrieval pass and streamed token by token; the
// assistant turn is persisted only when the stream completes naturally.
type ChatService struct {
	docs  driven.DocumentStore
	turns driven.ChatStore
	rag   driving.RAGService
	llm   driven.CompletionService
	topK  int
}

// NewChatService creates a new chat service.
func NewChatService(
	docs driven.DocumentStore,
	turns driven.ChatStore,
	rag driving.RAGService,
	llm driven.CompletionService,
	topK int,
) *ChatService {
	return &ChatService{
		docs:  docs,
		turns: turns,
		rag:   rag,
		llm:   llm,
		topK:  topK,
	}
}

// answerStream carries tokens from the model to the caller while the
// service accumulates the full answer for persistence.
type answerStream struct {
	tokens  chan string
	results []domain.SearchResult

	// err and saved are written before tokens is closed and read only
	// after it closes.
	err   error
	saved *domain.ChatMessage
}

func (a *answerStream) Tokens() <-chan string { return a.tokens }

func (a *answerStream) Err() error { return a.err }

func (a *answerStream) Results() []domain.SearchResult { return a.results }

// Ask validates the document, persists the user's turn, retrieves context
// and opens the answer stream. The assistant's turn is written to the
// store by the stream's own goroutine, and only if generation ran to its
// natural end.
func (s *ChatService) Ask(ctx context.Context, documentID, ownerID, question string) (driving.AnswerStream, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	if !doc.Queryable() {
		return nil, domain.ErrNotIndexed
	}

	// The user's turn is part of the history whatever happens next.
	userTurn := &domain.ChatMessage{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		OwnerID:    ownerID,
		Role:       domain.RoleUser,
		Content:    question,
		CreatedAt:  time.Now(),
	}
	if err := s.turns.AppendMessage(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("storing question: %w", err)
	}

	start := time.Now()

	results, err := s.rag.Search(ctx, documentID, question, s.topK)
	if err != nil {
		return nil, err
	}

	user := "Context:\n" + s.rag.FormatContext(results) + "\n\nQuestion: " + question
	stream, err := s.llm.CompleteStream(ctx, chatSystemPrompt, user, driven.CompleteOptions{
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("starting completion: %w", err)
	}

	answer := &answerStream{
		tokens:  make(chan string),
		results: results,
	}

	go s.relay(ctx, stream, answer, documentID, ownerID, start)

	return answer, nil
}

// relay forwards tokens to the caller and, on natural completion, resolves
// citations and persists the assistant turn. A cancelled or failed stream
// leaves no assistant turn behind.
func (s *ChatService) relay(
	ctx context.Context,
	stream driven.TokenStream,
	answer *answerStream,
	documentID, ownerID string,
	start time.Time,
) {
	defer close(answer.tokens)

	var full strings.Builder
	for token := range stream.Tokens() {
		full.WriteString(token)
		select {
		case answer.tokens <- token:
		case <-ctx.Done():
			answer.err = ctx.Err()
			return
		}
	}

	if err := stream.Err(); err != nil {
		answer.err = err
		logger.Warn("answer stream for document %s ended early: %v", documentID, err)
		return
	}

	content := full.String()
	turn := &domain.ChatMessage{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		OwnerID:         ownerID,
		Role:            domain.RoleAssistant,
		Content:         content,
		Citations:       resolveCitations(content, answer.results),
		RetrievedChunks: len(answer.results),
		ResponseTime:    time.Since(start),
		CreatedAt:       time.Now(),
	}

	if err := s.turns.AppendMessage(context.WithoutCancel(ctx), turn); err != nil {
		answer.err = fmt.Errorf("storing answer: %w", err)
		logger.Warn("failed to store assistant turn for document %s: %v", documentID, err)
		return
	}
	answer.saved = turn
}

// AskAndWait drains the stream and returns the persisted assistant turn.
func (s *ChatService) AskAndWait(ctx context.Context, documentID, ownerID, question string) (*domain.ChatMessage, error) {
	stream, err := s.Ask(ctx, documentID, ownerID, question)
	if err != nil {
		return nil, err
	}

	for range stream.Tokens() {
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	answer, ok := stream.(*answerStream)
	if !ok || answer.saved == nil {
		return nil, domain.ErrStreamClosed
	}
	return answer.saved, nil
}

// History returns the document's conversation in creation order.
func (s *ChatService) History(ctx context.Context, documentID, ownerID string) ([]domain.ChatMessage, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return s.turns.ListMessages(ctx, documentID)
}

// resolveCitations maps every bracketed marker in the answer onto the
// positional retrieval list. Markers are 1-based; out-of-range markers are
// dropped.
func resolveCitations(content string, results []domain.SearchResult) []domain.Citation {
	matches := citationPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	citations := make([]domain.Citation, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(results) {
			continue
		}
		r := results[idx]
		citations = append(citations, domain.Citation{
			Text:        r.Text,
			StartOffset: r.StartOffset,
			EndOffset:   r.EndOffset,
			ChunkIndex:  r.ChunkIndex,
			Score:       r.Score,
		})
	}
	if len(citations) == 0 {
		return nil
	}
	return citations
}
