package runtime

import "sync"

// pipe is a one-direction ordered dispatch queue. Messages posted via send
// are delivered to every registered listener in post order by a single pump
// goroutine, which is what gives each channel direction its in-order,
// single-path delivery guarantee.
type pipe struct {
	ch chan any

	mu        sync.Mutex
	listeners map[int]func(msg any)
	nextID    int
	closed    bool
}

func newPipe(buf int) *pipe {
	if buf <= 0 {
		buf = 1
	}
	p := &pipe{
		ch:        make(chan any, buf),
		listeners: make(map[int]func(msg any)),
	}
	go p.pump()
	return p
}

func (p *pipe) pump() {
	for msg := range p.ch {
		p.mu.Lock()
		fns := make([]func(msg any), 0, len(p.listeners))
		for _, fn := range p.listeners {
			fns = append(fns, fn)
		}
		p.mu.Unlock()
		for _, fn := range fns {
			fn(msg)
		}
	}
}

// send enqueues msg for dispatch. Best-effort: a closed pipe swallows the
// message, a full pipe drops it rather than blocking the sender.
func (p *pipe) send(msg any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- msg:
	default:
	}
}

// addListener registers fn and returns its removal action. Removal is safe
// after close and safe to call repeatedly.
func (p *pipe) addListener(fn func(msg any)) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// close stops the pump after the queue drains. Idempotent.
func (p *pipe) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}
