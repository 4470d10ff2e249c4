package registry

import (
	"sync"

	"github.com/DanielRustrum/WorkerBox/channel"
)

// Registry is a fingerprint-keyed map of live channels. Safe for concurrent
// use; the check-then-insert in GetOrCreate is atomic, so concurrent callers
// with the same key observe a single factory invocation.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*channel.Channel
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*channel.Channel)}
}

// GetOrCreate returns the channel registered under key, invoking factory to
// build and register it on first use. A factory error is returned as-is and
// nothing is stored.
func (r *Registry) GetOrCreate(key string, factory func() (*channel.Channel, error)) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.entries[key]; ok {
		return ch, nil
	}

	ch, err := factory()
	if err != nil {
		return nil, err
	}
	r.entries[key] = ch
	return ch, nil
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear drops every entry. Registered channels are not stopped; callers that
// want teardown stop them first (the facade's Shutdown does both).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*channel.Channel)
}
