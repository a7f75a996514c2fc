package memory

import (
	"context"
	"sync"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
// Turns are append-only, so a per-document slice preserves creation order.
type ChatStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.ChatMessage
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		messages: make(map[string][]domain.ChatMessage),
	}
}

// AppendMessage stores one conversation turn.
func (s *ChatStore) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.DocumentID] = append(s.messages[msg.DocumentID], *msg)
	return nil
}

// ListMessages returns a document's turns in creation order.
func (s *ChatStore) ListMessages(_ context.Context, documentID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[documentID]
	msgs := make([]domain.ChatMessage, len(stored))
	copy(msgs, stored)
	return msgs, nil
}

// DeleteMessages drops a document's conversation. Paired with
// DocumentStore.DeleteDocument, which has no cascade in memory.
func (s *ChatStore) DeleteMessages(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, documentID)
	return nil
}
