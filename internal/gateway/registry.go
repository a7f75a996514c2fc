// Package gateway exposes isolated, named tool capabilities over
// bidirectional byte streams by spawning one worker process per open call
// and relaying the caller's stream to the worker's stdio. The wire protocol
// is opaque to the gateway; it never parses what it relays.
package gateway

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

// LaunchSpec describes how to start one capability worker.
type LaunchSpec struct {
	// Command is the executable path.
	Command string

	// Args are passed verbatim to the worker.
	Args []string

	// Env entries are appended to the gateway's own environment.
	Env map[string]string
}

// Registry maps capability names to launch specifications. Resolution of an
// unknown name fails with domain.ErrCapabilityNotFound.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]LaunchSpec
}

// NewRegistry creates a registry from the given specs.
func NewRegistry(specs map[string]LaunchSpec) *Registry {
	entries := make(map[string]LaunchSpec, len(specs))
	for name, spec := range specs {
		entries[name] = spec
	}
	return &Registry{entries: entries}
}

// DefaultSpecs returns launch specs that run every built-in capability
// through this binary's own `worker <name>` subcommand.
func DefaultSpecs() map[string]LaunchSpec {
	exe, err := os.Executable()
	if err != nil {
		exe = "clearcut"
	}

	names := []string{
		domain.CapabilityDocumentAnalyzer,
		domain.CapabilityEntityExtractor,
		domain.CapabilityTimelineBuilder,
		domain.CapabilityLegalAnalyzer,
		domain.CapabilityFactVerifier,
	}

	specs := make(map[string]LaunchSpec, len(names))
	for _, name := range names {
		specs[name] = LaunchSpec{
			Command: exe,
			Args:    []string{"worker", name},
		}
	}
	return specs
}

// Resolve looks up a capability's launch spec.
func (r *Registry) Resolve(name string) (LaunchSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.entries[name]
	if !ok {
		return LaunchSpec{}, domain.ErrCapabilityNotFound
	}
	return spec, nil
}

// Names returns all registered capability names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Replace swaps the full entry table.
func (r *Registry) Replace(specs map[string]LaunchSpec) {
	entries := make(map[string]LaunchSpec, len(specs))
	for name, spec := range specs {
		entries[name] = spec
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// WatchFile reloads the registry whenever the file at path changes. The
// load function turns the file into a fresh entry table; load errors keep
// the previous table. Watching stops when ctx is cancelled.
func (r *Registry) WatchFile(ctx context.Context, path string, load func(string) (map[string]LaunchSpec, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace files rather than write them
	// in place, which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				specs, err := load(path)
				if err != nil {
					logger.Warn("capability registry reload failed: %v", err)
					continue
				}
				r.Replace(specs)
				logger.Info("capability registry reloaded (%d entries)", len(specs))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("capability registry watcher: %v", err)
			}
		}
	}()

	return nil
}
