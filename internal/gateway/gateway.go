package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driven"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.CapabilityGateway = (*Gateway)(nil)

// Gateway spawns and bridges capability workers. One worker process per
// open call; no pooling. Worker lifetime is tied to the session: closing
// the session terminates the worker, and a worker exit ends the session's
// read side.
type Gateway struct {
	registry *Registry
}

// New creates a gateway over the given registry.
func New(registry *Registry) *Gateway {
	return &Gateway{registry: registry}
}

// Open resolves name, starts the worker, and wires its stdio to the
// returned session. Diagnostic output on the worker's stderr is logged
// line by line, never forwarded to the caller.
func (g *Gateway) Open(ctx context.Context, name string) (driven.CapabilitySession, error) {
	spec, err := g.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolving capability %q: %w", name, err)
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Env = os.Environ()
	for key, value := range spec.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("wiring worker stdin: %w", err)
	}

	outReader, outWriter := io.Pipe()
	cmd.Stdout = outWriter

	errReader, errWriter := io.Pipe()
	cmd.Stderr = errWriter

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker %q: %w", name, err)
	}
	logger.Debug("gateway: started worker %q (pid %d)", name, cmd.Process.Pid)

	s := &session{
		name:   name,
		cmd:    cmd,
		stdin:  stdin,
		stdout: outReader,
		done:   make(chan struct{}),
	}
	s.exitCode.Store(-1)

	// Capture diagnostics. The scanner ends when the worker exits and
	// errWriter is closed.
	go func() {
		scanner := bufio.NewScanner(errReader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			logger.Debug("[%s stderr] %s", name, scanner.Text())
		}
	}()

	// Reap the worker. Closing outWriter afterwards turns the exit into
	// a clean EOF on the caller's read side, with the code available as
	// session metadata rather than a stream error.
	go func() {
		err := cmd.Wait()
		code := cmd.ProcessState.ExitCode()
		s.exitCode.Store(int64(code))
		close(s.done)
		outWriter.Close()
		errWriter.Close()
		if err != nil && !s.closed.Load() {
			logger.Warn("gateway: worker %q exited with code %d", name, code)
		} else {
			logger.Debug("gateway: worker %q exited with code %d", name, code)
		}
	}()

	return s, nil
}

// session is one live caller↔worker bridge.
type session struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *io.PipeReader

	done      chan struct{}
	exitCode  atomic.Int64
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ driven.CapabilitySession = (*session)(nil)

// Read returns worker output verbatim. io.EOF after the worker exits.
func (s *session) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Write forwards caller bytes to the worker's input verbatim.
func (s *session) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

// Close terminates the worker and discards residual output. Safe to call
// more than once. A caller disconnect must never leave an orphaned
// long-running process behind.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.stdin.Close()

		select {
		case <-s.done:
			// Worker already exited on its own.
			s.stdout.Close()
		default:
			if s.cmd.Process != nil {
				if err := s.cmd.Process.Kill(); err != nil {
					logger.Warn("gateway: killing worker %q: %v", s.name, err)
				}
			}
			// Unread worker output blocks exec's stdout copy, and
			// the reap waits on that copy. Closing the read side
			// first aborts the pending pipe write so the worker can
			// be reaped.
			s.stdout.Close()
			<-s.done
		}
	})
	return nil
}

// ExitCode returns the worker's exit code, or -1 while it is running.
func (s *session) ExitCode() int {
	return int(s.exitCode.Load())
}
