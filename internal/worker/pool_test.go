package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type countingJob struct {
	counter *int64
	fail    bool
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	if j.fail {
		return &countingResult{err: errors.New("job failed")}
	}
	return &countingResult{}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	var counter int64

	pool := NewPoolWithQueue(4, 20)
	pool.Start()
	for i := 0; i < 20; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}
	results := pool.Wait()

	if atomic.LoadInt64(&counter) != 20 {
		t.Errorf("expected 20 executions, got %d", counter)
	}
	if len(results) != 20 {
		t.Errorf("expected 20 results, got %d", len(results))
	}
}

func TestPool_FailedJobsReturnResults(t *testing.T) {
	var counter int64

	pool := NewPool(2)
	pool.Start()
	pool.Submit(&countingJob{counter: &counter, fail: true})
	pool.Submit(&countingJob{counter: &counter})
	results := pool.Wait()

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failed result, got %d", failures)
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	var counter int64

	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countingJob{counter: &counter})
	pool.Wait()

	if counter != 1 {
		t.Errorf("expected the job to run, got %d executions", counter)
	}
}
