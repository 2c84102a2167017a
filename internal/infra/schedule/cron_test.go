package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	spec     string
	runs     atomic.Int32
	err      error
	deadline atomic.Bool
}

func (j *countingJob) Name() string { return "counting" }
func (j *countingJob) Spec() string { return j.spec }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	_, ok := ctx.Deadline()
	j.deadline.Store(ok)
	return j.err
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	c := NewCron(nil, 0)

	assert.Error(t, c.Register(&countingJob{spec: "every tuesday"}))
}

func TestRunNowExecutesJobsWithTimeout(t *testing.T) {
	c := NewCron(nil, time.Second)
	ok := &countingJob{spec: "@every 1h"}
	failing := &countingJob{spec: "@hourly", err: errors.New("boom")}
	require.NoError(t, c.Register(ok))
	require.NoError(t, c.Register(failing))

	c.RunNow(context.Background())

	assert.Equal(t, int32(1), ok.runs.Load())
	assert.Equal(t, int32(1), failing.runs.Load())
	assert.True(t, ok.deadline.Load())
}

func TestRunTicksUntilCancelled(t *testing.T) {
	c := NewCron(nil, 0)
	job := &countingJob{spec: "@every 1s"}
	require.NoError(t, c.Register(job))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
