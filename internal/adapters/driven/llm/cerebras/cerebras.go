// Package cerebras provides a completion service adapter using the
// Cerebras inference API. The API is OpenAI-compatible, so the adapter
// works against any /chat/completions endpoint.
package cerebras

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cerebras.ai/v1"
	DefaultModel   = "llama3.3-70b"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Cerebras completion service.
type Config struct {
	// APIKey is the Cerebras API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cerebras.ai/v1).
	// Can be changed for any OpenAI-compatible endpoint.
	BaseURL string

	// Model is the model to use (default: llama3.3-70b).
	Model string

	// Timeout is the request timeout for non-streaming calls
	// (default: 120s). Streaming calls are bounded by their context.
	Timeout time.Duration
}

// CompletionService provides completions using the Cerebras API.
type CompletionService struct {
	client       *http.Client
	streamClient *http.Client
	baseURL      string
	apiKey       string
	model        string
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatCompletionMsg `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    float64             `json:"temperature,omitempty"`
	Stream         bool                `json:"stream,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

// responseFormat selects the provider's structured output mode.
type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the non-streaming response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// chatCompletionChunk is one streamed SSE event body.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewCompletionService creates a new Cerebras completion service.
func NewCompletionService(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cerebras: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &CompletionService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		// No client timeout on the streaming path: it would cut the
		// body mid-stream. The caller's context bounds it instead.
		streamClient: &http.Client{},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
	}, nil
}

// Complete produces a full completion for a system/user prompt pair.
func (s *CompletionService) Complete(ctx context.Context, system, user string, opts driven.CompleteOptions) (string, error) {
	req, err := s.newRequest(ctx, system, user, opts, false)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("cerebras error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cerebras error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("cerebras: no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CompleteStream opens a streamed completion and relays its tokens.
func (s *CompletionService) CompleteStream(ctx context.Context, system, user string, opts driven.CompleteOptions) (driven.TokenStream, error) {
	req, err := s.newRequest(ctx, system, user, opts, true)
	if err != nil {
		return nil, err
	}

	resp, err := s.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("cerebras error (status %d): %s", resp.StatusCode, string(body))
	}

	stream := &tokenStream{ch: make(chan string)}
	go stream.consume(ctx, resp.Body)
	return stream, nil
}

// newRequest builds a /chat/completions request.
func (s *CompletionService) newRequest(ctx context.Context, system, user string, opts driven.CompleteOptions, stream bool) (*http.Request, error) {
	reqBody := chatCompletionRequest{
		Model: s.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      stream,
	}
	if opts.JSONResponse {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	return req, nil
}

// ModelName returns the name of the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models
// endpoint. This validates the API key without running inference.
func (s *CompletionService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cerebras unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cerebras ping failed (status %d)", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *CompletionService) Close() error {
	s.client.CloseIdleConnections()
	s.streamClient.CloseIdleConnections()
	return nil
}

// tokenStream adapts an SSE body to the token stream interface.
type tokenStream struct {
	ch  chan string
	err error
}

func (t *tokenStream) Tokens() <-chan string { return t.ch }

func (t *tokenStream) Err() error { return t.err }

// consume reads SSE events off the body until [DONE], an error, or
// cancellation. The terminal state is stored before the channel closes.
func (t *tokenStream) consume(ctx context.Context, body io.ReadCloser) {
	defer close(t.ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		select {
		case t.ch <- content:
		case <-ctx.Done():
			t.err = ctx.Err()
			return
		}
	}

	if err := scanner.Err(); err != nil {
		t.err = fmt.Errorf("reading stream: %w", err)
	}
}
