package workerpool

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"
)

// Pool bounds how many submitted jobs run at once. Submit blocks while every
// worker is busy.
type Pool struct {
	pool *ants.Pool
}

func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Submit schedules job with ctx. A job is never started once ctx is done:
// Submit returns the context error instead and the caller keeps ownership of
// any bookkeeping the job would have done.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.pool.Submit(func() {
		job(ctx)
	}); err != nil {
		return fmt.Errorf("submit job: %w", err)
	}
	return nil
}

func (p *Pool) Stop() {
	p.pool.Release()
}

func (p *Pool) Workers() int {
	return p.pool.Cap()
}

func (p *Pool) Running() int {
	return p.pool.Running()
}
