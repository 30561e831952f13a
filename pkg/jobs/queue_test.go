package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	defer q.Stop()

	require.True(t, q.Enqueue(Job{Type: "ping", Payload: "hello"}))

	select {
	case job := <-done:
		assert.Equal(t, "ping", job.Type)
		assert.Equal(t, "hello", job.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.False(t, q.Enqueue(Job{Type: "ping"}))
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var processed int32
	q := NewQueue("test", func(_ context.Context, _ Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})

	q.Start(context.Background())
	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(Job{Type: "buffered"}))
	}

	// Stop must deliver everything accepted before shutdown and reject
	// anything after.
	q.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&processed))
	assert.False(t, q.Enqueue(Job{Type: "late"}))
}

func TestQueueDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(_ context.Context, _ Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// First job occupies the worker, second fills the buffer. Anything
	// beyond that is dropped.
	require.True(t, q.Enqueue(Job{Type: "slow"}))
	time.Sleep(50 * time.Millisecond)
	require.True(t, q.Enqueue(Job{Type: "buffered"}))

	assert.False(t, q.Enqueue(Job{Type: "overflow"}))
}
