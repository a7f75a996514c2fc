package driven

import (
	"context"
	"io"
)

// CapabilityGateway exposes named, isolated tool capabilities as
// bidirectional byte streams. The gateway is a pure relay: it spawns one
// worker process per open call, pipes the caller's writes to the worker's
// input and the worker's output back to the caller, and never parses the
// wire protocol.
type CapabilityGateway interface {
	// Open resolves name against the capability registry, spawns the
	// worker, and returns the wired session. Unknown names fail with
	// domain.ErrCapabilityNotFound.
	Open(ctx context.Context, name string) (CapabilitySession, error)
}

// CapabilitySession is one live caller↔worker bridge. Closing the session
// terminates the worker and discards residual output; a worker exit closes
// the read side with io.EOF and surfaces the exit code as metadata.
type CapabilitySession interface {
	io.ReadWriteCloser

	// ExitCode returns the worker's exit code, or -1 while it is still
	// running.
	ExitCode() int
}
