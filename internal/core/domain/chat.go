package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Citation is a resolved back-reference from generated text to a source
// chunk, produced by mapping a bracketed marker onto the positional
// retrieval-result list of the same request.
type Citation struct {
	Text        string  `json:"text"`
	StartOffset int     `json:"start_offset"`
	EndOffset   int     `json:"end_offset"`
	ChunkIndex  int     `json:"chunk_index"`
	Score       float64 `json:"score"`
}

// ChatMessage is one conversation turn over a document. Turns are append-only
// and ordered by creation time.
type ChatMessage struct {
	ID         string
	DocumentID string
	OwnerID    string
	Role       Role
	Content    string

	// Citations are set on assistant turns only.
	Citations []Citation

	// RetrievedChunks is how many passages grounded the answer.
	RetrievedChunks int

	// ResponseTime covers retrieval through last token, assistant turns
	// only.
	ResponseTime time.Duration

	CreatedAt time.Time
}
