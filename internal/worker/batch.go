package worker

import (
	"context"
	"errors"
	"fmt"
)

// indexedJob runs fn for one position of an ordered fan-out
type indexedJob[R any] struct {
	index int
	fn    func(ctx context.Context, i int) (R, error)
}

func (j *indexedJob[R]) Execute(ctx context.Context) Result {
	value, err := j.fn(ctx, j.index)
	return &IndexedResult[R]{Index: j.index, Value: value, Err: err}
}

// IndexedResult carries a value back to its submission position
type IndexedResult[R any] struct {
	Index int
	Value R
	Err   error
}

func (r *IndexedResult[R]) GetError() error {
	return r.Err
}

// RunOrdered executes fn for every index in [0, n) on a fail-fast pool and
// returns the values in index order. The first failure cancels outstanding
// work; the lowest failing index is reported, ignoring jobs that only saw the
// resulting cancellation.
func RunOrdered[R any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) (R, error)) ([]R, error) {
	if n <= 0 {
		return []R{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pool := NewPool(ctx, min(workers, n), WithFailFast())
	pool.Start()
	go func() {
		defer pool.Close()
		for i := 0; i < n; i++ {
			if !pool.Submit(&indexedJob[R]{index: i, fn: fn}) {
				return
			}
		}
	}()

	values := make([]R, n)
	errs := make([]error, n)
	received := 0
	for result := range pool.Results() {
		r, ok := result.(*IndexedResult[R])
		if !ok {
			continue
		}
		values[r.Index], errs[r.Index] = r.Value, r.Err
		received++
	}

	cause := pool.Err()
	for i, err := range errs {
		if err == nil {
			continue
		}
		if cause != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
			continue
		}
		return nil, fmt.Errorf("job %d: %w", i, err)
	}
	if cause != nil {
		return nil, cause
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != n {
		return nil, fmt.Errorf("received %d of %d results", received, n)
	}
	return values, nil
}
