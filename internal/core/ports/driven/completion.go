package driven

import "context"

// CompletionService provides language model completions for the fast
// analysis path, the capability workers, and the chat responder.
//
// Implementations may include:
//   - Cerebras (llama3.3-70b over an OpenAI-compatible API)
//   - Any OpenAI-compatible chat completions endpoint
type CompletionService interface {
	// Complete produces a full completion for a system/user prompt pair.
	Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error)

	// CompleteStream produces a lazy, finite, non-restartable token
	// sequence. Tokens are sent on the returned channel as they arrive
	// and the channel is closed when generation finishes. The stream's
	// terminal state is reported by its Err method after the channel
	// closes. Cancelling ctx abandons generation at the next token
	// boundary.
	CompleteStream(ctx context.Context, system, user string, opts CompleteOptions) (TokenStream, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures a completion call.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// JSONResponse requests the provider's structured-JSON response mode.
	JSONResponse bool
}

// TokenStream is a producer-driven sequence of text tokens.
type TokenStream interface {
	// Tokens returns the channel tokens arrive on. Closed when the
	// stream ends, normally or not.
	Tokens() <-chan string

	// Err reports why the stream ended: nil on natural completion, the
	// cause otherwise. Valid only after Tokens is closed.
	Err() error
}
