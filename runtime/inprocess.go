package runtime

import (
	"context"
	"fmt"

	"github.com/DanielRustrum/WorkerBox/core"
	"github.com/DanielRustrum/WorkerBox/endpoint"
	"github.com/DanielRustrum/WorkerBox/logging"
)

// Options configures the in-process runtime.
type Options struct {
	// MessageBufferSize sets the per-direction pipe buffering. Larger buffers
	// absorb bursts; a full pipe drops new messages rather than blocking the
	// sender.
	MessageBufferSize int

	// Logger receives worker lifecycle events. Defaults to NoOp if nil.
	Logger logging.Logger
}

// InProcess hosts workers as goroutines within the current process. Safe for
// concurrent use; Spawn may be called from any goroutine.
type InProcess struct {
	bufferSize int
	logger     logging.Logger
}

var _ core.Runtime = (*InProcess)(nil)

// NewInProcess constructs an in-process runtime with optional overrides.
func NewInProcess(optFns ...func(o *Options)) *InProcess {
	opts := Options{
		MessageBufferSize: 128,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &InProcess{
		bufferSize: opts.MessageBufferSize,
		logger:     opts.Logger,
	}
}

// Spawn launches entry on its own goroutine and returns the initiator-side
// handle. The worker's context is detached from ctx's cancellation (workers
// outlive the Start call) and is cancelled only by Terminate.
//
// Before entry runs, the worker side performs the startup handshake: one
// untimed receive whose resolved value becomes the entry's initData. Entry
// therefore never observes the handshake payload through Poll, Receive or
// Subscribe.
func (r *InProcess) Spawn(ctx context.Context, entry core.WorkerFunc) (core.Handle, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: nil worker entry", core.ErrSpawnFailed)
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	toWorker := newPipe(r.bufferSize)
	toInitiator := newPipe(r.bufferSize)

	h := &handle{
		out:    toWorker,
		in:     toInitiator,
		cancel: cancel,
	}

	// The worker-side endpoint attaches its listener here, before Spawn
	// returns, so nothing the initiator posts afterwards can be missed.
	workerEnd := endpoint.New(toInitiator.send, toWorker.addListener)

	go func() {
		defer workerEnd.Close()

		initData, ok := workerEnd.Receive(workerCtx, 0)
		if !ok {
			// Terminated before the handshake payload arrived.
			return
		}
		r.logger.Debug("worker handshake complete")

		if err := entry(workerCtx, workerEnd, initData); err != nil {
			r.logger.Error("worker exited with error", "error", err)
		}
	}()

	return h, nil
}

// handle is the initiator-side view of a spawned goroutine worker.
type handle struct {
	out    *pipe // initiator -> worker
	in     *pipe // worker -> initiator
	cancel context.CancelFunc
}

var _ core.Handle = (*handle)(nil)

func (h *handle) Post(msg any) {
	h.out.send(msg)
}

func (h *handle) AddListener(fn func(msg any)) (remove func()) {
	return h.in.addListener(fn)
}

// Terminate cancels the worker's context and closes both pipes. Idempotent;
// posts after termination are no-ops.
func (h *handle) Terminate() {
	h.cancel()
	h.out.close()
	h.in.close()
}
