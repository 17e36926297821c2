package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/pkg/metrics"
)

const channelBuffer = 256

// ErrPoolStopped is returned by Do once the pool no longer runs jobs.
var ErrPoolStopped = errors.New("hash pool stopped")

type job struct {
	ctx  context.Context
	fn   func()
	done chan struct{}
	err  error
}

// HashPool runs CPU-bound password hashing on a fixed set of workers so slow
// bcrypt calls never execute on the request-accept path and concurrent logins
// do not queue behind one another beyond the pool size.
type HashPool struct {
	jobs    chan *job
	workers int
	log     zerolog.Logger

	quit     chan struct{}
	stopOnce sync.Once
}

// NewHashPool creates a pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewHashPool(numWorkers int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &HashPool{
		jobs:    make(chan *job, channelBuffer),
		workers: numWorkers,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// Workers reports the pool size.
func (p *HashPool) Workers() int {
	return p.workers
}

// Start launches all worker goroutines. Cancelling ctx is equivalent to Stop.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(i)
	}
	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-p.quit:
		}
	}()
	p.log.Info().Int("workers", p.workers).Msg("hash pool started")
}

// Stop terminates the workers. Pending and future Do calls return
// ErrPoolStopped. Stop is idempotent.
func (p *HashPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.log.Info().Msg("hash pool stopped")
	})
}

// Do runs fn on a worker and waits for it. It returns ctx.Err() if ctx ends,
// or ErrPoolStopped if the pool stops, before fn is picked up or finishes; fn
// may still complete afterwards, so it must not touch state the caller reads
// after an error.
func (p *HashPool) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.quit:
		return ErrPoolStopped
	default:
	}
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrPoolStopped
	case p.jobs <- j:
		metrics.HashPoolQueueDepth.Set(float64(len(p.jobs)))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		select {
		case <-j.done:
			return j.err
		default:
			return ErrPoolStopped
		}
	case <-j.done:
		return j.err
	}
}

func (p *HashPool) runWorker(id int) {
	for {
		select {
		case <-p.quit:
			return
		case j := <-p.jobs:
			metrics.HashPoolQueueDepth.Set(float64(len(p.jobs)))
			if err := j.ctx.Err(); err != nil {
				p.log.Debug().Int("worker_id", id).Msg("skipping hash job for cancelled request")
				j.err = err
				close(j.done)
				continue
			}
			j.fn()
			close(j.done)
		}
	}
}
