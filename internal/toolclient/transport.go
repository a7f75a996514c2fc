// Package toolclient speaks the MCP tool-call protocol to capability
// workers through a gateway session. The gateway relays bytes; this package
// owns the framing (newline-delimited JSON-RPC, the same framing the
// workers' stdio transport uses).
package toolclient

import (
	"bufio"
	"context"
	"io"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Ensure StreamTransport implements the transport interface.
var _ mcp.Transport = (*StreamTransport)(nil)

// StreamTransport is an MCP transport over an arbitrary byte stream,
// typically a gateway capability session. Messages are framed one per line.
type StreamTransport struct {
	// RWC carries the protocol. Closing the transport's connection
	// closes it.
	RWC io.ReadWriteCloser
}

// Connect wires the stream up as an MCP connection.
func (t *StreamTransport) Connect(_ context.Context) (mcp.Connection, error) {
	return &streamConn{
		rwc:    t.RWC,
		reader: bufio.NewReaderSize(t.RWC, 64*1024),
	}, nil
}

// streamConn reads and writes newline-delimited JSON-RPC messages.
type streamConn struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader
}

func (c *streamConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 || err != io.EOF {
			return nil, err
		}
		// Final message without a trailing newline.
	}
	return jsonrpc.DecodeMessage(line)
}

func (c *streamConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := jsonrpc.EncodeMessage(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = c.rwc.Write(data)
	return err
}

func (c *streamConn) Close() error {
	return c.rwc.Close()
}

func (c *streamConn) SessionID() string {
	return ""
}
