package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Job is one unit of work. It runs on a pool goroutine, never on the UI thread.
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

type job struct {
	ctx context.Context
	fn  Job
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
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
			log.Printf("Worker: PANIC in job: %v", r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		log.Printf("Worker: dropping job, context done: %v", err)
		return
	}
	j.fn(j.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, fn Job) bool {
	select {
	case p.jobs <- job{ctx: ctx, fn: fn}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
