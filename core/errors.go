package core

import "errors"

// ErrNotStarted reports an operation on a channel outside its RUNNING state:
// anything but Start/Send before Start, or any operation after Stop. It
// indicates a programming error and is surfaced synchronously.
var ErrNotStarted = errors.New("channel not started")

// ErrSpawnFailed reports that the hosting runtime could not create the worker
// execution context. It is returned from Start and never retried.
var ErrSpawnFailed = errors.New("worker spawn failed")
