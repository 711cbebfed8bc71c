// Package worker runs importer and model fan-out on bounded goroutine pools
// and paces outbound requests per host.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one Job
type Result interface {
	GetError() error
}

// Option configures a Pool
type Option func(*Pool)

// WithFailFast cancels the pool context as soon as a job reports an error
func WithFailFast() Option {
	return func(p *Pool) {
		p.failFast = true
	}
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workers  int
	failFast bool
	queue    chan Job
	results  chan Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	errMu     sync.Mutex
	err       error
	closeOnce sync.Once
	doneOnce  sync.Once
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool(parent context.Context, workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(parent)
	p := &Pool{
		workers: workers,
		queue:   make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			if err := result.GetError(); err != nil && p.failFast {
				p.fail(err)
			}
			// A finished job is always reported, even after cancellation
			p.results <- result
		}
	}
}

func (p *Pool) fail(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil {
		p.err = err
		p.cancel()
	}
}

// Err returns the first error that stopped a fail-fast pool, nil otherwise
func (p *Pool) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Submit queues a job; it returns false once the pool is cancelled
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		return true
	}
}

// Results streams results as jobs finish; the channel closes once Close was called and the workers exit.
// Consumers must drain it.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close signals that no more jobs will be submitted
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
		go func() {
			p.wg.Wait()
			p.finish()
		}()
	})
}

// Wait closes the queue and collects all remaining results
func (p *Pool) Wait() []Result {
	p.Close()
	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels queued work and stops the workers once in-flight jobs report
func (p *Pool) Shutdown() {
	p.cancel()
	go func() {
		for range p.results {
		}
	}()
	p.wg.Wait()
	p.finish()
}

func (p *Pool) finish() {
	p.doneOnce.Do(func() {
		close(p.results)
		p.cancel()
	})
}
