// Package endpoint implements the mailbox engine behind one side of a
// WorkerBox channel. A single parameterized implementation serves both the
// initiating side and the worker side; the transport primitives (a post
// function and a listener attach function) are injected at construction.
//
// The engine turns a raw, unordered inbound message stream into four
// consumption primitives with well-defined arbitration:
//
//   - Send: fire-and-forget post to the peer
//   - Receive: one-shot awaited delivery with optional timeout
//   - Poll: non-blocking drain of the oldest queued message
//   - Subscribe: continuous observation of every inbound message
//
// Core invariant: at any instant at most one of {message queue non-empty,
// pending receivers outstanding} holds. An arriving message is routed to the
// oldest pending receiver when one exists, otherwise appended to the queue;
// a new Receive is satisfied from the queue when possible, otherwise it
// registers as a pending receiver. This is what makes request/response
// pairing correct under concurrent Receive calls.
package endpoint
