package channel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/DanielRustrum/WorkerBox/core"
)

// MockRuntime is a testify mock over core.Runtime.
type MockRuntime struct {
	mock.Mock
}

func (m *MockRuntime) Spawn(ctx context.Context, entry core.WorkerFunc) (core.Handle, error) {
	args := m.Called(ctx, entry)
	if h := args.Get(0); h != nil {
		return h.(core.Handle), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeHandle records posts and lets tests emit inbound messages, standing in
// for a live worker context.
type fakeHandle struct {
	mu         sync.Mutex
	posted     []any
	listeners  map[int]func(msg any)
	nextID     int
	terminated bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{listeners: make(map[int]func(msg any))}
}

func (h *fakeHandle) Post(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posted = append(h.posted, msg)
}

func (h *fakeHandle) AddListener(fn func(msg any)) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *fakeHandle) Terminate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminated = true
}

func (h *fakeHandle) emit(msg any) {
	h.mu.Lock()
	fns := make([]func(msg any), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

func (h *fakeHandle) postedMessages() []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]any, len(h.posted))
	copy(out, h.posted)
	return out
}

func noopEntry(ctx context.Context, ch core.Peer, initData any) error { return nil }

func TestChannel_StartPostsInitDataFirst(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil).Once()

	c := New(rt, noopEntry)
	err := c.Start(context.Background(), map[string]string{"userId": "abc-123"})

	assert.NoError(t, err)
	assert.NoError(t, c.Send("ping"))
	assert.Equal(t, []any{map[string]string{"userId": "abc-123"}, "ping"}, h.postedMessages())
	rt.AssertExpectations(t)
}

func TestChannel_StartIsIdempotent(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil).Once()

	c := New(rt, noopEntry)
	assert.NoError(t, c.Start(context.Background(), "first"))
	assert.NoError(t, c.Start(context.Background(), "second"))

	// One spawn, and only the first init payload hit the wire.
	rt.AssertNumberOfCalls(t, "Spawn", 1)
	assert.Equal(t, []any{"first"}, h.postedMessages())
}

func TestChannel_StartPropagatesSpawnFailure(t *testing.T) {
	rt := new(MockRuntime)
	rt.On("Spawn", mock.Anything, mock.Anything).Return(nil, core.ErrSpawnFailed)

	c := New(rt, noopEntry)
	err := c.Start(context.Background(), nil)

	assert.ErrorIs(t, err, core.ErrSpawnFailed)

	// A failed start leaves the channel unstarted.
	assert.NoError(t, c.Send("dropped"))
	_, _, err = c.Poll()
	assert.ErrorIs(t, err, core.ErrNotStarted)
}

func TestChannel_SendBeforeStartIsSilentNoOp(t *testing.T) {
	rt := new(MockRuntime)
	c := New(rt, noopEntry)

	assert.NoError(t, c.Send("into the void"))
	rt.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything)
}

func TestChannel_OperationsBeforeStartFail(t *testing.T) {
	c := New(new(MockRuntime), noopEntry)

	_, _, err := c.Receive(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, core.ErrNotStarted)

	_, _, err = c.Poll()
	assert.ErrorIs(t, err, core.ErrNotStarted)

	_, err = c.Subscribe(func(any) {})
	assert.ErrorIs(t, err, core.ErrNotStarted)

	assert.ErrorIs(t, c.Stop(), core.ErrNotStarted)
}

func TestChannel_ReceiveAndPollFromWorker(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil)

	c := New(rt, noopEntry)
	assert.NoError(t, c.Start(context.Background(), nil))

	h.emit("a")
	h.emit("b")

	msg, ok, err := c.Receive(context.Background(), time.Second)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", msg)

	msg, ok, err = c.Poll()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", msg)

	_, ok, err = c.Poll()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestChannel_SubscribeObservesWorkerMessages(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil)

	c := New(rt, noopEntry)
	assert.NoError(t, c.Start(context.Background(), nil))

	var seen []any
	unsub, err := c.Subscribe(func(msg any) { seen = append(seen, msg) })
	assert.NoError(t, err)
	defer unsub()

	h.emit("one")
	h.emit("two")

	assert.Equal(t, []any{"one", "two"}, seen)
}

func TestChannel_StopIsTerminal(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil)

	c := New(rt, noopEntry)
	assert.NoError(t, c.Start(context.Background(), nil))
	h.emit("pending")

	assert.NoError(t, c.Stop())
	assert.True(t, h.terminated)

	// Everything, including a restart, now fails.
	assert.ErrorIs(t, c.Send("x"), core.ErrNotStarted)
	_, _, err := c.Receive(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, core.ErrNotStarted)
	_, _, err = c.Poll()
	assert.ErrorIs(t, err, core.ErrNotStarted)
	_, err = c.Subscribe(func(any) {})
	assert.ErrorIs(t, err, core.ErrNotStarted)
	assert.ErrorIs(t, c.Stop(), core.ErrNotStarted)
	assert.ErrorIs(t, c.Start(context.Background(), nil), core.ErrNotStarted)
}

func TestChannel_StopLeavesPendingReceiversToTheirContext(t *testing.T) {
	rt := new(MockRuntime)
	h := newFakeHandle()
	rt.On("Spawn", mock.Anything, mock.Anything).Return(h, nil)

	c := New(rt, noopEntry)
	assert.NoError(t, c.Start(context.Background(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		_, ok, _ := c.Receive(ctx, 0)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	assert.NoError(t, c.Stop())

	// The receiver is still blocked; its own ctx is the way out.
	select {
	case <-done:
		t.Fatal("receiver resolved by Stop; it should stay pending")
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	assert.False(t, <-done)
}
