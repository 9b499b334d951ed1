// Package workerpool is a bounded goroutine pool with backpressure. The
// event queue runs its publishers on one.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // shed load
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/shashiranjanraj/planty/pkg/logger"
)

var (
	// ErrPoolFull is returned by Submit when every worker is busy and the
	// buffer is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")

	// ErrPoolClosed is returned after Shutdown.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool runs tasks on a fixed number of goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed and the close of tasks, so no Submit sends on a
	// closed channel.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once
}

// New starts size workers with a buffer of twice that many tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		tasks: make(chan func(), size*2),
		done:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until task is enqueued, ctx is done or the pool is
// shutting down.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolClosed
	}
}

// Shutdown stops accepting tasks, lets queued tasks finish and waits for
// the workers. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		// Release SubmitWait callers parked on a full buffer first; they
		// hold the read lock.
		close(p.done)
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	task()
}
