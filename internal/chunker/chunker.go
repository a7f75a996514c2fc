// Package chunker provides fixed-size overlapping text chunking.
package chunker

import (
	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunker splits raw text into fixed-size, overlapping windows and records
// the byte offsets of each window so citations can point back into the
// source text.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split chunks text for the given document. Windows cover [0, len(text))
// with no gaps; each adjacent pair overlaps by exactly the configured
// overlap, except the final window, which may be shorter.
func (c *Chunker) Split(documentID, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimated := (textLen / (c.chunkSize - c.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	index := 0
	for start < textLen {
		end := start + c.chunkSize
		if end > textLen {
			end = textLen
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID:  documentID,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
			Index:       index,
		})
		index++

		start += c.chunkSize - c.overlap
	}

	return chunks
}
