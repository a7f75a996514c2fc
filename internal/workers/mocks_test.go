package workers

import (
	"context"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// mockCompletion is a mock implementation of driven.CompletionService
// that records the last prompt it received.
type mockCompletion struct {
	response string
	err      error

	lastSystem string
	lastUser   string
	lastOpts   driven.CompleteOptions
	calls      int
}

func (m *mockCompletion) Complete(_ context.Context, system, user string, opts driven.CompleteOptions) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	m.lastOpts = opts
	m.calls++
	return m.response, m.err
}

func (m *mockCompletion) CompleteStream(_ context.Context, _, _ string, _ driven.CompleteOptions) (driven.TokenStream, error) {
	return nil, m.err
}

func (m *mockCompletion) ModelName() string { return "mock-model" }

func (m *mockCompletion) Ping(_ context.Context) error { return m.err }

func (m *mockCompletion) Close() error { return nil }
