// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runJobs submits n jobs that sleep briefly and returns the maximum number
// of jobs observed running at once.
func runJobs(t *testing.T, q *Queue, n int) int64 {
	ctx := context.Background()
	current := atomic.Int64{}
	max := atomic.Int64{}
	for i := 0; i < n; i++ {
		err := q.Submit(ctx, &Job{
			Source:      fmt.Sprintf("/src/file%d", i),
			Destination: fmt.Sprintf("/dst/file%d", i),
			Run: func(ctx context.Context) error {
				c := current.Add(1)
				for {
					m := max.Load()
					if c <= m || max.CompareAndSwap(m, c) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				current.Add(-1)
				return nil
			},
		})
		require.NoError(t, err)
	}
	q.Wait()
	return max.Load()
}

func TestQueueSequential(t *testing.T) {
	q := New(1)
	assert.Equal(t, int64(1), runJobs(t, q, 20))
	assert.Equal(t, 0, q.Running())
	assert.False(t, q.Failed())
}

func TestQueueSequentialOrder(t *testing.T) {
	q := New(1)
	mu := sync.Mutex{}
	order := []int{}
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Submit(context.Background(), &Job{
			Run: func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			},
		}))
	}
	q.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestQueueBounded(t *testing.T) {
	q := New(4)
	assert.Equal(t, 4, q.Max())
	max := runJobs(t, q, 40)
	assert.LessOrEqual(t, max, int64(4))
	assert.GreaterOrEqual(t, max, int64(1))
}

func TestQueueMinimum(t *testing.T) {
	assert.Equal(t, 1, New(0).Max())
	assert.Equal(t, 1, New(-1).Max())
}

func TestQueueFailures(t *testing.T) {
	q := New(2)
	ctx := context.Background()
	completed := atomic.Int64{}
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Submit(ctx, &Job{
			Source:      fmt.Sprintf("/src/file%d", i),
			Destination: fmt.Sprintf("/dst/file%d", i),
			Run: func(ctx context.Context) error {
				if i%3 == 0 {
					return errors.New("boom")
				}
				completed.Add(1)
				return nil
			},
		}))
	}
	q.Wait()
	assert.True(t, q.Failed())
	assert.Equal(t, int64(6), completed.Load())

	failures := q.Failures()
	require.Len(t, failures, 4)
	for _, f := range failures {
		assert.EqualError(t, f.Err, "boom")
		assert.Contains(t, f.Error(), f.Job.Source)
	}

	// failures are drained
	assert.Empty(t, q.Failures())
	assert.False(t, q.Failed())
}

func TestQueueSubmitCanceled(t *testing.T) {
	q := New(1)
	release := make(chan struct{})
	require.NoError(t, q.Submit(context.Background(), &Job{
		Run: func(ctx context.Context) error {
			<-release
			return nil
		},
	}))
	assert.Equal(t, 1, q.Running())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Submit(ctx, &Job{
		Run: func(ctx context.Context) error {
			t.Error("job should not start")
			return nil
		},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	q.Wait()
	assert.Equal(t, 0, q.Running())
}

func TestQueueAdmit(t *testing.T) {
	q := New(1)
	release := make(chan struct{})
	require.NoError(t, q.Submit(context.Background(), &Job{
		Run: func(ctx context.Context) error {
			<-release
			return nil
		},
	}))

	// admission is decided after the slot frees
	closed := atomic.Bool{}
	go func() {
		time.Sleep(5 * time.Millisecond)
		closed.Store(true)
		close(release)
	}()
	afterRelease := atomic.Bool{}
	require.NoError(t, q.Submit(context.Background(), &Job{
		Admit: func() bool {
			afterRelease.Store(closed.Load())
			return false
		},
		Run: func(ctx context.Context) error {
			t.Error("job should not start")
			return nil
		},
	}))
	assert.True(t, afterRelease.Load())

	// the slot of a dropped job is released
	ran := atomic.Bool{}
	require.NoError(t, q.Submit(context.Background(), &Job{
		Admit: func() bool { return true },
		Run: func(ctx context.Context) error {
			ran.Store(true)
			return nil
		},
	}))
	q.Wait()
	assert.True(t, ran.Load())
	assert.Equal(t, 0, q.Running())
}
