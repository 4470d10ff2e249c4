package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DanielRustrum/WorkerBox/core"
	"github.com/DanielRustrum/WorkerBox/endpoint"
	"github.com/DanielRustrum/WorkerBox/logging"
)

type state int

const (
	unstarted state = iota
	running
	stopped
)

// Options holds construction overrides for a Channel.
type Options struct {
	// Logger receives channel lifecycle events. Defaults to NoOp if nil.
	Logger logging.Logger
}

// Channel is the initiator's end of a worker channel. All methods are safe
// for concurrent use. A Channel is created idle; Start spawns the worker and
// runs the handshake, Stop tears everything down for good.
type Channel struct {
	id      string
	runtime core.Runtime
	entry   core.WorkerFunc
	logger  logging.Logger

	mu     sync.Mutex
	st     state
	handle core.Handle
	end    *endpoint.Endpoint
}

// New constructs an unstarted Channel for the given worker entry point.
func New(rt core.Runtime, entry core.WorkerFunc, optFns ...func(o *Options)) *Channel {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Channel{
		id:      uuid.NewString(),
		runtime: rt,
		entry:   entry,
		logger:  opts.Logger,
	}
}

// ID returns the channel's unique identifier, used for log correlation.
func (c *Channel) ID() string { return c.id }

// Start spawns the worker context and posts initData as the very first wire
// message, before any worker-side user logic could have touched the channel.
// Idempotent: a second call while RUNNING is a no-op and its initData is
// discarded. After Stop, Start fails with core.ErrNotStarted (the lifecycle
// is terminal). A runtime rejection is returned wrapped and is not retried.
func (c *Channel) Start(ctx context.Context, initData any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.st {
	case running:
		return nil
	case stopped:
		return core.ErrNotStarted
	}

	h, err := c.runtime.Spawn(ctx, c.entry)
	if err != nil {
		return fmt.Errorf("spawn worker: %w", err)
	}

	c.handle = h
	c.end = endpoint.New(h.Post, h.AddListener)
	c.st = running

	// Handshake: the init payload goes out first. The worker side consumes
	// it with one implicit receive before its user logic runs, so it never
	// reappears through Poll/Receive/Subscribe over there.
	h.Post(initData)

	c.logger.Debug("channel started", "channel_id", c.id)
	return nil
}

// Send posts msg to the worker. Before Start this is a deliberate silent
// no-op (the peer cannot be listening yet); after Stop it fails with
// core.ErrNotStarted.
func (c *Channel) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.st {
	case unstarted:
		return nil
	case stopped:
		return core.ErrNotStarted
	}

	c.end.Send(msg)
	return nil
}

// Receive waits for a single message from the worker. See core.Peer for the
// timeout and no-value semantics. Outside RUNNING it fails immediately with
// core.ErrNotStarted.
func (c *Channel) Receive(ctx context.Context, timeout time.Duration) (any, bool, error) {
	c.mu.Lock()
	if c.st != running {
		c.mu.Unlock()
		return nil, false, core.ErrNotStarted
	}
	end := c.end
	c.mu.Unlock()

	msg, ok := end.Receive(ctx, timeout)
	return msg, ok, nil
}

// Poll returns the oldest queued message from the worker without blocking,
// or no-value when the queue is empty. Outside RUNNING it fails with
// core.ErrNotStarted.
func (c *Channel) Poll() (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st != running {
		return nil, false, core.ErrNotStarted
	}
	msg, ok := c.end.Poll()
	return msg, ok, nil
}

// Subscribe registers fn against every message arriving from the worker.
// The returned action deregisters it and stays safe to call after the
// channel stops. Outside RUNNING, Subscribe fails with core.ErrNotStarted.
func (c *Channel) Subscribe(fn func(msg any)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st != running {
		return nil, core.ErrNotStarted
	}
	return c.end.Subscribe(fn), nil
}

// Stop terminates the worker context, drops all queued messages and releases
// the transport binding. Outstanding Receive calls are left to their own ctx
// or timeout: the context backing them is gone and no further delivery can
// occur. Stop on a channel that is not RUNNING fails with core.ErrNotStarted;
// STOPPED is terminal.
func (c *Channel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st != running {
		return core.ErrNotStarted
	}

	c.st = stopped
	c.end.Close()
	c.handle.Terminate()
	c.end = nil
	c.handle = nil

	c.logger.Debug("channel stopped", "channel_id", c.id)
	return nil
}
