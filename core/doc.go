// Package core provides the foundational domain types and interfaces used by
// WorkerBox. It defines the contracts for:
//
//   - Runtime / Handle (the worker-hosting execution substrate)
//   - WorkerFunc (the entry point executed inside a spawned worker)
//   - Peer (one side's messaging view of a channel)
//   - Sentinel errors for lifecycle misuse and spawn failure
//
// The package intentionally keeps implementation concerns (the mailbox
// engine, the in-process runtime, channel memoization) out of scope,
// exposing small interfaces to enable custom runtimes and test doubles.
package core
