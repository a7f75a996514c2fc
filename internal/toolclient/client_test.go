package toolclient

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
)

// echoInput is the input schema for the test worker's echo tool.
type echoInput struct {
	Text string `json:"text" jsonschema:"text to echo back"`
}

// newEchoServer builds a minimal in-process worker with one echo tool and
// one always-failing tool.
func newEchoServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "echo-worker", Version: "0.0.1"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Echo the input text",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input echoInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "echo: " + input.Text}},
		}, nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fail",
		Description: "Always fails",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ echoInput) (*mcp.CallToolResult, any, error) {
		return nil, nil, errors.New("deliberate failure")
	})

	return server
}

// pipeSession adapts one side of a net.Pipe to a capability session.
type pipeSession struct {
	net.Conn
}

func (pipeSession) ExitCode() int { return -1 }

// pipeGateway runs the worker in-process over a pipe instead of spawning it.
type pipeGateway struct{}

func (pipeGateway) Open(_ context.Context, name string) (driven.CapabilitySession, error) {
	if name != "echo-worker" {
		return nil, domain.ErrCapabilityNotFound
	}

	caller, worker := net.Pipe()
	go func() {
		_ = newEchoServer().Run(context.Background(), &StreamTransport{RWC: worker})
	}()
	return pipeSession{caller}, nil
}

func TestClient_CallTool(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip through the transport", func(t *testing.T) {
		client := New(pipeGateway{})

		out, err := client.CallTool(ctx, "echo-worker", "echo", map[string]any{"text": "hello"})

		require.NoError(t, err)
		assert.Equal(t, "echo: hello", out)
	})

	t.Run("tool failure becomes an error", func(t *testing.T) {
		client := New(pipeGateway{})

		_, err := client.CallTool(ctx, "echo-worker", "fail", map[string]any{"text": "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "deliberate failure")
	})

	t.Run("unknown capability", func(t *testing.T) {
		client := New(pipeGateway{})

		_, err := client.CallTool(ctx, "nonexistent", "echo", nil)
		assert.ErrorIs(t, err, domain.ErrCapabilityNotFound)
	})

	t.Run("unknown tool", func(t *testing.T) {
		client := New(pipeGateway{})

		_, err := client.CallTool(ctx, "echo-worker", "no-such-tool", map[string]any{"text": "x"})
		require.Error(t, err)
	})
}
