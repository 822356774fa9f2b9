// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Queue runs jobs with a bounded number of concurrent jobs.
// Failed jobs are recorded and never stop other jobs.
type Queue struct {
	max      int
	slots    *semaphore.Weighted
	group    errgroup.Group
	running  atomic.Int64
	mu       sync.Mutex
	failures []*Failure
}

func (q *Queue) Max() int {
	return q.max
}

// Running returns the number of jobs currently running.
func (q *Queue) Running() int {
	return int(q.running.Load())
}

// Submit blocks until a slot is free and then starts the job, unless the job is not admitted.
// An error is only returned if the context is done before a slot frees.
func (q *Queue) Submit(ctx context.Context, job *Job) error {
	if err := q.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	if job.Admit != nil && !job.Admit() {
		q.slots.Release(1)
		return nil
	}
	q.running.Add(1)
	q.group.Go(func() error {
		defer q.slots.Release(1)
		defer q.running.Add(-1)
		if err := job.Run(ctx); err != nil {
			q.mu.Lock()
			q.failures = append(q.failures, &Failure{Job: job, Err: err})
			q.mu.Unlock()
		}
		return nil
	})
	return nil
}

// Wait blocks until every submitted job has finished.
func (q *Queue) Wait() {
	_ = q.group.Wait() // jobs record failures instead of returning them
}

// Failed returns true if any job has failed.
func (q *Queue) Failed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.failures) > 0
}

// Failures removes and returns the failures recorded so far, in the order they occurred.
func (q *Queue) Failures() []*Failure {
	q.mu.Lock()
	defer q.mu.Unlock()
	failures := q.failures
	q.failures = nil
	return failures
}

// New returns a queue that runs at most max jobs at once.
// A max less than 1 is treated as 1.
func New(max int) *Queue {
	if max < 1 {
		max = 1
	}
	return &Queue{
		max:   max,
		slots: semaphore.NewWeighted(int64(max)),
	}
}
