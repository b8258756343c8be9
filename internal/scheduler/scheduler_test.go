package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failN    int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failN {
		return errors.New("transient")
	}
	return nil
}

func newJob(name string, failN int32) *countingJob {
	return &countingJob{name: name, schedule: "0 0 7 * * *", failN: failN}
}

func TestScheduler_AddRemove(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(newJob("b", 0)))
	require.NoError(t, s.AddJob(newJob("a", 0)))
	assert.Error(t, s.AddJob(newJob("a", 0)), "duplicate name")

	bad := newJob("bad", 0)
	bad.schedule = "not a cron"
	assert.Error(t, s.AddJob(bad))

	assert.Equal(t, []string{"a", "b"}, s.Jobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.Jobs())
}

func TestScheduler_RunJobSync(t *testing.T) {
	tests := []struct {
		name       string
		failN      int32
		maxRetries int
		success    bool
		attempts   int
	}{
		{"succeeds first time", 0, 2, true, 1},
		{"recovers on retry", 2, 2, true, 3},
		{"gives up", 5, 1, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(logger.NewNop(), WithRetry(tt.maxRetries, 0))
			job := newJob("job", tt.failN)
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJobSync(context.Background(), "job")
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.attempts, result.Attempts)
			if !tt.success {
				assert.Equal(t, "transient", result.Error)
			}

			history, err := s.JobHistory("job")
			require.NoError(t, err)
			require.Len(t, history.Results, 1)
		})
	}

	s := New(logger.NewNop())
	_, err := s.RunJobSync(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScheduler_CancelStopsRetries(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(3, time.Hour))
	job := newJob("job", 10)
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestScheduler_Stats(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(0, 0))
	require.NoError(t, s.AddJob(newJob("ok", 0)))
	require.NoError(t, s.AddJob(newJob("flaky", 1)))

	s.Start()
	defer s.Stop()

	for _, name := range []string{"ok", "flaky", "flaky"} {
		_, err := s.RunJobSync(context.Background(), name)
		require.NoError(t, err)
	}

	stats := s.Stats()
	require.Len(t, stats, 2)

	ok := stats["ok"]
	assert.Equal(t, 1, ok.TotalRuns)
	assert.Equal(t, 1.0, ok.SuccessRate)
	assert.NotNil(t, ok.NextRun)
	assert.Nil(t, ok.LastFailure)

	flaky := stats["flaky"]
	assert.Equal(t, 2, flaky.TotalRuns)
	assert.Equal(t, 1, flaky.FailureCount)
	assert.Equal(t, 0.5, flaky.SuccessRate)
	require.NotNil(t, flaky.LastSuccess)
	require.NotNil(t, flaky.LastFailure)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{JobName: "j", Attempts: i, Success: i%4 != 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 10, h.Results[0].Attempts, "oldest entries dropped")

	latest := h.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, historyLimit+9, latest[1].Attempts)

	assert.Len(t, h.Failed(), 25)
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-9)
}
