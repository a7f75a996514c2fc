package driving

import (
	"context"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// AnswerStream is a finite, non-restartable token sequence plus the
// retrieval context it was grounded on.
type AnswerStream interface {
	// Tokens returns the token channel, closed when the answer is
	// complete or the request was cancelled.
	Tokens() <-chan string

	// Err reports the stream's terminal state after Tokens closes.
	Err() error

	// Results returns the positional retrieval list for this request.
	// Citation markers [n] in the answer resolve 1-based into it.
	Results() []domain.SearchResult
}

// ChatService answers questions over an indexed document with streamed,
// citation-grounded responses.
type ChatService interface {
	// Ask retrieves context for the question and opens a token stream.
	// The user's turn is persisted immediately; the assistant's turn is
	// persisted only when the stream completes naturally. Fails with
	// domain.ErrNotIndexed while the index job has not settled.
	Ask(ctx context.Context, documentID, ownerID, question string) (AnswerStream, error)

	// AskAndWait drains Ask's stream and returns the persisted
	// assistant turn.
	AskAndWait(ctx context.Context, documentID, ownerID, question string) (*domain.ChatMessage, error)

	// History returns the document's conversation in creation order.
	History(ctx context.Context, documentID, ownerID string) ([]domain.ChatMessage, error)
}
