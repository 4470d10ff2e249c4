package endpoint

import (
	"context"
	"sync"
	"time"
)

// receiver is a single outstanding Receive call waiting for delivery. The
// channel is buffered so the delivery path never blocks on a waiter.
type receiver struct {
	ch chan any
}

// Endpoint is one side's mailbox over an injected transport. It is safe for
// concurrent use; all internal state is guarded by a single mutex and
// touched only briefly, never across a blocking wait.
type Endpoint struct {
	post   func(msg any)
	detach func()

	mu        sync.Mutex
	queue     []any
	receivers []*receiver
	subs      map[int]func(msg any)
	nextSub   int
	closed    bool
}

// New constructs an Endpoint bound to its transport primitives. post
// delivers a message to the peer; attach registers the endpoint's inbound
// listener and returns the corresponding detach action.
func New(post func(msg any), attach func(fn func(msg any)) (remove func())) *Endpoint {
	e := &Endpoint{
		post: post,
		subs: make(map[int]func(msg any)),
	}
	e.detach = attach(e.deliver)
	return e
}

// deliver is the transport listener: it fans the message out to every active
// subscription and routes it to the oldest pending receiver, or queues it
// when no receiver is waiting. Claiming a receiver and handing it the
// message happen under one lock acquisition (the buffered channel makes the
// send non-blocking), so "removed from the pending list" always implies
// "message in the receiver's channel" — abandon relies on that. Subscription
// callbacks run outside the lock, on the transport's dispatch goroutine, so
// per-direction arrival order is preserved.
func (e *Endpoint) deliver(msg any) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	subs := make([]func(msg any), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	if len(e.receivers) > 0 {
		rcv := e.receivers[0]
		e.receivers = e.receivers[1:]
		rcv.ch <- msg
	} else {
		e.queue = append(e.queue, msg)
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

// Send posts msg to the peer. Fire-and-forget: no confirmation, no error.
func (e *Endpoint) Send(msg any) {
	e.post(msg)
}

// Receive returns a single inbound message. A queued message resolves
// immediately; otherwise the call registers as a pending receiver and blocks
// until delivery, until timeout elapses (timeout > 0), or until ctx is
// cancelled. The no-value outcome is (nil, false); it is a normal result,
// not an error. Pending receivers are served strictly FIFO.
func (e *Endpoint) Receive(ctx context.Context, timeout time.Duration) (any, bool) {
	e.mu.Lock()
	if len(e.queue) > 0 {
		msg := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		return msg, true
	}
	rcv := &receiver{ch: make(chan any, 1)}
	e.receivers = append(e.receivers, rcv)
	e.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case msg := <-rcv.ch:
		return msg, true
	case <-expired:
		return e.abandon(rcv)
	case <-ctx.Done():
		return e.abandon(rcv)
	}
}

// abandon removes rcv from the pending list after a timeout or cancellation.
// A receiver no longer in the list was claimed by deliver, which placed the
// message in rcv.ch before releasing the lock; that raced-in message is
// returned rather than lost.
func (e *Endpoint) abandon(rcv *receiver) (any, bool) {
	e.mu.Lock()
	for i, r := range e.receivers {
		if r == rcv {
			e.receivers = append(e.receivers[:i], e.receivers[i+1:]...)
			e.mu.Unlock()
			return nil, false
		}
	}
	e.mu.Unlock()

	return <-rcv.ch, true
}

// Poll returns the oldest queued message, or (nil, false) when the queue is
// empty. Never blocks and never interacts with pending receivers: while any
// receiver is pending the queue is empty by invariant.
func (e *Endpoint) Poll() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	msg := e.queue[0]
	e.queue = e.queue[1:]
	return msg, true
}

// Subscribe registers fn to run once per inbound message for as long as the
// subscription is active. Delivery to subscriptions is independent of and in
// parallel with queue consumption: every message reaches all active
// subscriptions and still feeds the queue/pending-receiver mechanism. The
// returned action deregisters the subscription; calling it again, or after
// Close, is a no-op.
func (e *Endpoint) Subscribe(fn func(msg any)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// Close detaches the endpoint from its transport, drops all queued messages
// and deregisters all subscriptions. Pending receivers are left waiting: the
// context backing them is gone and no further delivery can occur, so their
// callers fall back to their own ctx or timeout.
func (e *Endpoint) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.queue = nil
	e.subs = make(map[int]func(msg any))
	detach := e.detach
	e.detach = nil
	e.mu.Unlock()

	if detach != nil {
		detach()
	}
}
