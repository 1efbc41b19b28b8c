// Package worker runs pipeline jobs off the event loop.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Job is one unit of work. It runs on a worker goroutine.
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	log    zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

type job struct {
	ctx context.Context
	id  string
	fn  Job
}

// New creates a worker pool. Size defaults to 1 when size<=0. Queue is 1 slot.
func New(size int, log zerolog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1), log: log}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for range n {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("job", j.id).Err(fmt.Errorf("panic: %v", r)).Msg("Worker: job panicked")
		}
	}()
	p.log.Debug().Str("job", j.id).Msg("Worker: job started")
	j.fn(j.ctx)
	p.log.Debug().Str("job", j.id).Msg("Worker: job finished")
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// dropped or the pool is closed.
func (p *Pool) Submit(ctx context.Context, id string, fn Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, id: id, fn: fn}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call twice.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
