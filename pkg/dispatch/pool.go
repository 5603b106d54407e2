package dispatch

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool is a fixed set of workers shared by every request. At most size
// tasks are admitted at once, queued and running combined.
type Pool struct {
	size  int
	sem   *semaphore.Weighted
	tasks chan func()

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts size workers.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		size:  size,
		sem:   semaphore.NewWeighted(int64(size)),
		tasks: make(chan func(), size),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.tasks {
				fn()
			}
		}()
	}
	return p
}

// Size is the admission limit.
func (p *Pool) Size() int { return p.size }

// Submit waits for a free slot and queues fn. It gives up when ctx is done.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.sem.Release(1)
		return ErrPoolClosed
	}
	// admission keeps queued+running at or below size, so this never blocks
	p.tasks <- func() {
		defer p.sem.Release(1)
		fn()
	}
	return nil
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
