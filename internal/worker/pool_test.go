package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()
	if p := NewPool(ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 8
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 error, got %d", failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockJob{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit to refuse jobs after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestRunOrdered_PreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var finishOrder []int

	values, err := RunOrdered(context.Background(), 4, 20, func(ctx context.Context, i int) (int, error) {
		// Later indices finish first
		time.Sleep(time.Duration(20-i) * time.Millisecond)
		mu.Lock()
		finishOrder = append(finishOrder, i)
		mu.Unlock()
		return i * i, nil
	})
	if err != nil {
		t.Fatalf("RunOrdered failed: %v", err)
	}

	if len(values) != 20 {
		t.Fatalf("expected 20 values, got %d", len(values))
	}
	for i, v := range values {
		if v != i*i {
			t.Errorf("values[%d] = %d, want %d", i, v, i*i)
		}
	}
	if len(finishOrder) != 20 {
		t.Errorf("expected 20 executions, got %d", len(finishOrder))
	}
}

func TestRunOrdered_LowestErrorWins(t *testing.T) {
	_, err := RunOrdered(context.Background(), 3, 10, func(ctx context.Context, i int) (string, error) {
		if i == 7 || i == 3 {
			return "", errors.New("page failed")
		}
		return "ok", nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "job 3: page failed" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunOrdered_FailFastReportsCause(t *testing.T) {
	_, err := RunOrdered(context.Background(), 4, 4, func(ctx context.Context, i int) (int, error) {
		if i == 3 {
			return 0, errors.New("boom")
		}
		// Earlier jobs only finish once the failure cancels them
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "job 3: boom" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPool_FailFast(t *testing.T) {
	pool := NewPool(context.Background(), 1, WithFailFast())
	pool.Start()

	var executed int32
	pool.Submit(&mockJob{shouldErr: true, executed: &executed})
	results := pool.Wait()

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if pool.Err() == nil {
		t.Error("expected fail-fast pool to record the error")
	}
	if pool.Submit(&mockJob{}) {
		t.Error("expected cancelled pool to refuse jobs")
	}
}

func TestRunOrdered_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunOrdered(ctx, 2, 50, func(ctx context.Context, i int) (int, error) {
		return i, nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRunOrdered_Empty(t *testing.T) {
	values, err := RunOrdered(context.Background(), 2, 0, func(ctx context.Context, i int) (int, error) {
		t.Fatal("fn must not run")
		return 0, nil
	})
	if err != nil || len(values) != 0 {
		t.Errorf("expected empty result, got %v %v", values, err)
	}
}
