// FILE: internal/server/processor/processor.go
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Processor runs background tasks one at a time on a single worker.
// Callers reserve the worker with TryAcquire before writing any task
// state, so the at-most-one rule holds across the gap between the
// reservation and Submit.
type Processor struct {
	tasks  chan Task
	busy   atomic.Bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a processor and starts its worker
func New() *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Processor{
		tasks:  make(chan Task, 1),
		ctx:    ctx,
		cancel: cancel,
	}

	p.wg.Add(1)
	go p.worker()
	return p
}

// worker executes tasks sequentially until shutdown
func (p *Processor) worker() {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			task.Run(p.ctx)
			p.busy.Store(false)
		case <-p.ctx.Done():
			return
		}
	}
}

// TryAcquire reserves the worker for one task. It returns ErrBusy while
// a reservation is held or a task is still running.
func (p *Processor) TryAcquire() error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

// Release frees a reservation whose task was never submitted
func (p *Processor) Release() {
	p.busy.Store(false)
}

// Submit hands a task to the worker. The caller must hold the
// reservation from TryAcquire, which guarantees the slot is free.
func (p *Processor) Submit(task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	}
}

// Busy reports whether the worker is reserved or running a task
func (p *Processor) Busy() bool {
	return p.busy.Load()
}

// Shutdown cancels the in-flight task context and waits for the worker
func (p *Processor) Shutdown(timeout time.Duration) error {
	p.cancel()
	close(p.tasks)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
