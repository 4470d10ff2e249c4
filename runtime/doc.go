// Package runtime provides the built-in worker-hosting runtime: each spawned
// worker is a goroutine wired to the initiator through a pair of ordered,
// process-local dispatch pipes. It implements core.Runtime and is the
// default substrate used by the WorkerBox facade.
//
// Delivery guarantees match the channel contract: messages posted in one
// direction are observed in post order; delivery is best-effort (a full pipe
// drops rather than blocking the sender); the two directions are not ordered
// relative to each other.
//
// Source-text workers do not exist here. Workers are pre-built
// core.WorkerFunc entry points, and initialization data travels over the
// same startup handshake a remote runtime would use.
package runtime
