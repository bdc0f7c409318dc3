package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "tick", Interval: 10 * time.Millisecond, Run: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "job ran after Stop")
}

func TestSchedulerFailingJobKeepsRunning(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "fail", Interval: 5 * time.Millisecond, Run: func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}}))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerAddValidation(t *testing.T) {
	s := New()
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.Add(Job{Name: "a", Interval: time.Second}), "job without function")
	require.NoError(t, s.Add(Job{Name: "a", Interval: time.Second, Run: noop}))
	assert.Error(t, s.Add(Job{Name: "a", Interval: time.Second, Run: noop}), "duplicate job name")

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.Error(t, s.Add(Job{Name: "b", Interval: time.Second, Run: noop}), "adding to a running scheduler")
	assert.Error(t, s.Start(context.Background()), "starting twice")
}

func TestSchedulerSkipsDisabledJobs(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "off", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))
	require.NoError(t, s.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Zero(t, runs.Load())
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)
	require.NoError(t, s.Add(Job{Name: "wait", Interval: time.Millisecond, Run: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	}}))
	require.NoError(t, s.Start(ctx))
	<-started
	cancel()
	s.Stop()
	assert.False(t, s.IsRunning())
}
