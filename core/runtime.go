package core

import (
	"context"
	"time"
)

// Peer is one side's messaging view of a channel. The initiating side and the
// worker side see the same four consumption primitives; only the underlying
// transport binding differs.
//
// Message payloads are opaque to WorkerBox. They are passed through without
// serialization or structural validation; callers own payload typing.
type Peer interface {
	// Send posts a message to the peer. Fire-and-forget: no delivery
	// confirmation, no error.
	Send(msg any)

	// Receive waits for a single inbound message. If one is already queued it
	// is returned immediately, otherwise the caller blocks until a message
	// arrives, the timeout elapses, or ctx is cancelled. A timeout <= 0 waits
	// indefinitely. The second return value reports whether a message was
	// received; false is the no-value outcome, not an error.
	//
	// Concurrent Receive calls are served strictly FIFO: the Nth pending
	// call resolves with the Nth arriving message.
	Receive(ctx context.Context, timeout time.Duration) (any, bool)

	// Poll returns the oldest queued message, or (nil, false) when the queue
	// is empty. Never blocks.
	Poll() (any, bool)

	// Subscribe registers fn to run once per inbound message, in arrival
	// order, independent of queue consumption by Poll/Receive. The returned
	// action deregisters the subscription and is safe to call repeatedly,
	// including after the channel has shut down.
	Subscribe(fn func(msg any)) (unsubscribe func())
}

// WorkerFunc is the entry point executed inside a spawned worker. It runs
// concurrently with the initiator and communicates with it only through ch.
// The ctx is cancelled when the worker's handle is terminated. initData is
// the initialization payload delivered by the startup handshake; it is
// guaranteed to be populated before the function is invoked.
//
// A returned error has no caller to propagate to; the runtime logs it.
type WorkerFunc func(ctx context.Context, ch Peer, initData any) error

// Runtime hosts worker execution contexts. Implementations must deliver
// posted messages in post order per direction; delivery is best-effort with
// no acknowledgment.
type Runtime interface {
	// Spawn creates an isolated execution context running entry and returns
	// a handle to it. A rejected entry surfaces ErrSpawnFailed.
	Spawn(ctx context.Context, entry WorkerFunc) (Handle, error)
}

// Handle represents a live spawned worker context from the initiator's side.
type Handle interface {
	// Post enqueues msg for asynchronous delivery to the worker.
	Post(msg any)

	// AddListener registers a raw observer over the worker's outbound
	// message stream and returns its removal action.
	AddListener(fn func(msg any)) (remove func())

	// Terminate unconditionally destroys the context. Posting to a
	// terminated handle is a no-op.
	Terminate()
}
