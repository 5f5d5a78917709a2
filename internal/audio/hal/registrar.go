package hal

import (
	"fmt"
	"sync"
)

// registrarQueueSize bounds how many registration tasks may wait. The
// queue only ever holds a handful of entries (module callback set and
// clear, plus reconnect re-registration), so a full queue indicates a
// wedged bridge rather than load.
const registrarQueueSize = 16

// registrar runs callback registration tasks on a single goroutine, in
// submission order. Serialising the set/clear traffic keeps the bridge
// from ever seeing two registration attempts in flight, which is what
// makes the clear-and-retry recovery for module change callbacks sound.
type registrar struct {
	mu     sync.Mutex
	closed bool
	tasks  chan func()
	done   chan struct{}
	logger Logger
}

func newRegistrar(logger Logger) *registrar {
	r := &registrar{
		tasks:  make(chan func(), registrarQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go r.run()
	return r
}

func (r *registrar) run() {
	defer close(r.done)
	for task := range r.tasks {
		r.runTask(task)
	}
}

func (r *registrar) runTask(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("registration task panic", "panic", rec)
		}
	}()
	task()
}

// submit queues a task for the registration goroutine. It returns
// ErrClosed after close, and an error when the queue is full.
func (r *registrar) submit(task func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	select {
	case r.tasks <- task:
		return nil
	default:
		return fmt.Errorf("registration queue full (%d tasks pending)", registrarQueueSize)
	}
}

// close stops accepting tasks, drains those already queued, and waits
// for the goroutine to exit.
func (r *registrar) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.tasks)
	r.mu.Unlock()
	<-r.done
}
