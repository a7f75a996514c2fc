package toolclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure Client implements the tool caller port.
var _ driven.ToolCaller = (*Client)(nil)

// Client performs one-shot MCP tool calls against capability workers.
// Each CallTool opens a fresh gateway session, runs the MCP handshake,
// invokes the tool and tears the session down again.
type Client struct {
	gateway driven.CapabilityGateway
	impl    *mcp.Implementation
}

// New creates a tool-call client backed by the given gateway.
func New(gateway driven.CapabilityGateway) *Client {
	return &Client{
		gateway: gateway,
		impl: &mcp.Implementation{
			Name:    "clearcut",
			Version: "1.0.0",
		},
	}
}

// CallTool invokes capability/tool with the given arguments and returns
// the text content of the result. A result flagged as an error by the
// worker is returned as a Go error. Cancelling the context kills the
// worker process via the session teardown.
func (c *Client) CallTool(ctx context.Context, capability, tool string, args map[string]any) (string, error) {
	start := time.Now()

	sess, err := c.gateway.Open(ctx, capability)
	if err != nil {
		return "", fmt.Errorf("open capability %s: %w", capability, err)
	}
	defer sess.Close()

	client := mcp.NewClient(c.impl, nil)
	cs, err := client.Connect(ctx, &StreamTransport{RWC: sess}, nil)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", capability, err)
	}
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("call %s/%s: %w", capability, tool, err)
	}

	text := textContent(res)
	if res.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return "", fmt.Errorf("%s/%s: %s", capability, tool, text)
	}

	logger.Debug("tool call %s/%s completed in %s", capability, tool, time.Since(start).Round(time.Millisecond))
	return text, nil
}

// textContent concatenates all text blocks of a tool result.
func textContent(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
