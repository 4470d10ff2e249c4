// Package workerbox provides a typed request/response messaging layer over
// isolated background workers. A worker runs concurrently with the caller
// and communicates only via message passing; both ends of a channel get the
// same four consumption primitives (Send, Receive, Poll, Subscribe) plus a
// one-time structured handshake that delivers initialization data to the
// worker before its user logic runs. Most applications interact with this
// package by:
//
//  1. Creating a Box via New() (optionally overriding the runtime, registry
//     or logger)
//  2. Obtaining a channel for a worker entry point via Channel()
//  3. Driving it: Start(initData), Send/Receive/Poll/Subscribe, Stop()
//
// Channels are memoized by worker identity: asking the same Box for the same
// entry function returns the same live channel instead of spawning a
// duplicate worker. All defaults are safe for local development and testing;
// custom runtimes and structured loggers plug in through Options.
package workerbox

import (
	"sync"

	"github.com/DanielRustrum/WorkerBox/channel"
	"github.com/DanielRustrum/WorkerBox/core"
	"github.com/DanielRustrum/WorkerBox/internal/fingerprint"
	"github.com/DanielRustrum/WorkerBox/logging"
	"github.com/DanielRustrum/WorkerBox/registry"
	"github.com/DanielRustrum/WorkerBox/runtime"
)

// Options configures the Box instance.
type Options struct {
	// Runtime hosts spawned workers. Defaults to the in-process
	// goroutine-backed runtime.
	Runtime core.Runtime

	// Registry memoizes channels by worker fingerprint. Defaults to a fresh
	// registry owned by this Box; tests inject their own to stay isolated.
	Registry *registry.Registry

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Box is the high-level facade aggregating the runtime, the channel registry
// and logging. Safe for concurrent use.
type Box struct {
	runtime core.Runtime
	reg     *registry.Registry
	logger  logging.Logger

	mu       sync.Mutex
	channels []*channel.Channel
}

// New creates a Box with optional overrides. Any unset dependency is
// initialized with its default implementation.
func New(optFns ...func(o *Options)) *Box {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Runtime == nil {
		opts.Runtime = runtime.NewInProcess(func(o *runtime.Options) {
			o.Logger = opts.Logger
		})
	}
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}

	return &Box{
		runtime: opts.Runtime,
		reg:     opts.Registry,
		logger:  opts.Logger,
	}
}

// Channel returns the channel memoized for entry, constructing it on first
// use. Entries whose identity cannot be fingerprinted still get a working
// channel, just an unmemoized one: it bypasses the registry entirely (a
// dead entry per call would only accumulate there) and a later call with
// the same entry builds a fresh channel instead of finding this one.
func (b *Box) Channel(entry core.WorkerFunc) (*channel.Channel, error) {
	key, stable := fingerprint.Key(entry)
	if !stable {
		b.logger.Debug("worker fingerprint unstable; channel will not be memoized")
		return b.newChannel(entry), nil
	}

	return b.reg.GetOrCreate(key, func() (*channel.Channel, error) {
		return b.newChannel(entry), nil
	})
}

// newChannel constructs a channel for entry and tracks it for Shutdown.
func (b *Box) newChannel(entry core.WorkerFunc) *channel.Channel {
	ch := channel.New(b.runtime, entry, func(o *channel.Options) {
		o.Logger = b.logger
	})
	b.mu.Lock()
	b.channels = append(b.channels, ch)
	b.mu.Unlock()
	b.logger.Debug("channel registered", "channel_id", ch.ID())
	return ch
}

// Shutdown stops every channel this Box created and clears the registry.
// Channels that never started, or already stopped, are skipped.
func (b *Box) Shutdown() {
	b.mu.Lock()
	chans := make([]*channel.Channel, len(b.channels))
	copy(chans, b.channels)
	b.channels = nil
	b.mu.Unlock()

	for _, ch := range chans {
		// Channels that never started, or already stopped, report
		// ErrNotStarted; nothing to tear down for those.
		_ = ch.Stop()
	}
	b.reg.Clear()
}
