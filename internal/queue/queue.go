// Package queue provides the asynchronous execution boundary. Enqueue
// returns as soon as the work is accepted; the caller never waits for the
// workflow to finish. The queue is always an injected dependency so tests can
// substitute a synchronous implementation.
package queue

import (
	"context"
	"log"
	"sync"

	"github.com/rflorenc/conversion-host-service/internal/errs"
)

// Fn is a unit of work. The queue supplies the execution context.
type Fn func(ctx context.Context)

// Queue accepts units of work for asynchronous execution.
type Queue interface {
	// Enqueue hands fn to the queue. It returns a queue-kind error when the
	// work cannot be accepted (pool shut down or saturated); it never blocks
	// on execution.
	Enqueue(ctx context.Context, fn Fn) error
}

// WorkerPool runs enqueued work on a fixed number of goroutines fed by a
// buffered channel.
type WorkerPool struct {
	jobs chan Fn
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewWorkerPool starts workers goroutines consuming a queue of the given
// depth.
func NewWorkerPool(workers, depth int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = 1
	}
	p := &WorkerPool{jobs: make(chan Fn, depth)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for fn := range p.jobs {
		p.run(fn)
	}
}

// run isolates one unit of work; a panicking workflow must not take the
// worker down with it.
func (p *WorkerPool) run(fn Fn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker recovered from panic: %v", r)
		}
	}()
	fn(context.Background())
}

// Enqueue implements Queue.
func (p *WorkerPool) Enqueue(ctx context.Context, fn Fn) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errs.Queue("task queue is shut down")
	}

	if err := ctx.Err(); err != nil {
		p.mu.Unlock()
		return errs.Queue("task queue did not accept work: %v", err)
	}

	// Holding the lock for the send keeps Shutdown from closing the channel
	// underneath us.
	select {
	case p.jobs <- fn:
		p.mu.Unlock()
		return nil
	default:
		p.mu.Unlock()
		return errs.Queue("task queue is full")
	}
}

// Shutdown stops accepting work and waits for in-flight work to drain, or
// for ctx to expire.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync executes work inline on the calling goroutine. Test use only.
type Sync struct{}

// Enqueue implements Queue by running fn immediately.
func (Sync) Enqueue(ctx context.Context, fn Fn) error {
	fn(ctx)
	return nil
}
