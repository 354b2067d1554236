package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceRecordsStatus(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	s.AddJob(Job{Name: "ok", Interval: time.Hour, Fn: func(ctx context.Context) error { return nil }})
	s.AddJob(Job{Name: "fails", Interval: time.Hour, Fn: func(ctx context.Context) error { return boom }})
	s.AddJob(Job{Name: "panics", Interval: time.Hour, Fn: func(ctx context.Context) error { panic("bad") }})

	err := s.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)

	status := s.Status()
	require.Len(t, status, 3)
	assert.Equal(t, "ok", status[0].Name)
	assert.Equal(t, int64(1), status[0].Runs)
	assert.Empty(t, status[0].LastError)
	assert.NotNil(t, status[0].LastRunAt)
	assert.Equal(t, "boom", status[1].LastError)
	assert.Equal(t, "panic: bad", status[2].LastError)
}

func TestTimeoutBoundsTheRun(t *testing.T) {
	s := NewScheduler()
	s.AddJob(Job{Name: "slow", Interval: time.Hour, Timeout: 10 * time.Millisecond, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	s.AddJob(Job{Name: "tick", Interval: time.Hour, Fn: func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			done <- struct{}{}
		}
		return nil
	}})

	s.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

type purgerStub struct {
	cutoff time.Time
}

func (p *purgerStub) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return 3, nil
}

func TestPurgeUsesGracePeriod(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := &purgerStub{}
	jobs := NewAuthJobs(stub)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.PurgeExpiredRefreshTokens(context.Background()))
	assert.Equal(t, now.Add(-7*24*time.Hour), stub.cutoff)
}

type engineStub struct {
	workflow.Engine
	calls int
}

func (e *engineStub) CheckSLABreaches(ctx context.Context) (workflow.BreachReport, error) {
	e.calls++
	return workflow.BreachReport{TaskCount: 2, Instances: 1}, nil
}

func TestWorkflowJobsRegistersSLACheck(t *testing.T) {
	s := NewScheduler()
	engine := &engineStub{}
	NewWorkflowJobs(engine).RegisterJobs(s, time.Minute)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, JobSLABreachCheck, s.Status()[0].Name)
}
