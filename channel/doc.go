// Package channel implements the initiator-side wrapper around a worker
// channel: the UNSTARTED -> RUNNING -> STOPPED lifecycle, the startup
// handshake that delivers initialization data before worker logic runs, and
// the teardown that terminates the worker context.
//
// Lifecycle rules:
//
//   - Start is idempotent; a second call while RUNNING is a no-op and only
//     the first call's init payload reaches the worker.
//   - Send before Start is a deliberate silent no-op: the peer cannot
//     possibly be listening yet.
//   - Receive, Poll and Subscribe outside RUNNING, and every operation after
//     Stop (including Stop itself), fail with core.ErrNotStarted. STOPPED is
//     terminal; there is no restart path.
package channel
