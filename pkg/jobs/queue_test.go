package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- job
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "payment"}))

	select {
	case job := <-done:
		assert.Equal(t, "j1", job.ID)
		assert.Equal(t, 3, job.Attempt)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was not handled")
	}
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "j1"}))
	q.Stop(context.Background())

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueRejectsWhenClosedOrFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	assert.ErrorIs(t, q.Enqueue(Job{ID: "early"}), ErrQueueClosed)

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "b"}))
	assert.Equal(t, 1, q.Len())
	assert.ErrorIs(t, q.Enqueue(Job{ID: "c"}), ErrQueueFull)

	close(release)
	q.Stop(context.Background())
	assert.ErrorIs(t, q.Enqueue(Job{ID: "late"}), ErrQueueClosed)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id}))
	}
	q.Stop(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
