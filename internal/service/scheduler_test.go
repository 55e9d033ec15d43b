package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldFireWindows(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"mid month noon", time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), false},
		{"last day before 23h", time.Date(2024, 3, 31, 22, 59, 0, 0, time.UTC), false},
		{"last day 23h", time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), true},
		{"last day 23:59", time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), true},
		{"first day 00:00", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"first day 00:04", time.Date(2024, 4, 1, 0, 4, 0, 0, time.UTC), true},
		{"first day 00:05", time.Date(2024, 4, 1, 0, 5, 0, 0, time.UTC), false},
		{"first day 01:00", time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC), false},
		{"leap february end", time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC), true},
		{"non leap feb 28", time.Date(2023, 2, 28, 23, 30, 0, 0, time.UTC), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, shouldFire(tc.now, nil))
		})
	}
}

func TestShouldFireMonthGuard(t *testing.T) {
	now := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)

	sameMonth := time.Date(2024, 3, 31, 23, 1, 0, 0, time.UTC)
	assert.False(t, shouldFire(now, &sameMonth))

	prevMonth := time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC)
	assert.True(t, shouldFire(now, &prevMonth))

	yearAgo := time.Date(2023, 3, 31, 23, 30, 0, 0, time.UTC)
	assert.True(t, shouldFire(now, &yearAgo))
}

// Walking every minute from 23:00 on the last day of March through 00:05 of
// April must fire at most once per calendar month.
func TestFireAtMostOncePerMonthAcrossBoundary(t *testing.T) {
	var last *time.Time
	fires := map[time.Month]int{}

	now := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 5, 0, 0, time.UTC)
	for ; !now.After(end); now = now.Add(time.Minute) {
		if shouldFire(now, last) {
			fires[now.Month()]++
			fired := now
			last = &fired
		}
	}

	assert.Equal(t, 1, fires[time.March])
	assert.Equal(t, 1, fires[time.April])
}

type schedulerStore struct {
	mu      sync.Mutex
	marker  *time.Time
	batches [][]domain.MonthlyConsumption
}

func (s *schedulerStore) UpsertMonthlyBatch(ctx context.Context, records []domain.MonthlyConsumption, marker time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, records)
	m := marker
	s.marker = &m
	return nil
}

func (s *schedulerStore) LastRollupMonth(ctx context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker, nil
}

type noopRunner struct{}

func (noopRunner) RunMonthly(ctx context.Context, now time.Time) error { return nil }

type countingRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRunner) RunMonthly(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingAlerter struct {
	mu    sync.Mutex
	calls int
	last  error
}

func (a *recordingAlerter) SendRollupAlert(now time.Time, err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.last = err
	return nil
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// A failed run must leave the month guard unset so the next qualifying tick
// retries the full rollup, and must notify the alerter. The injected clock
// pins every tick inside the end-of-month window regardless of the ticker's
// own timestamps.
func TestSchedulerFailureLeavesGuardUnsetAndRetries(t *testing.T) {
	store := &schedulerStore{}
	runner := &countingRunner{err: assert.AnError}
	alerter := &recordingAlerter{}

	s := NewScheduler(runner, store, zerolog.Nop()).WithAlerter(alerter)
	s.tick = 2 * time.Millisecond
	s.backoff = time.Millisecond
	s.clock = func() time.Time { return time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.count() >= 2 }, time.Second, time.Millisecond,
		"failed rollup was not retried on a later qualifying tick")
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}

	assert.Nil(t, s.last, "month guard must stay unset after failed runs")
	assert.GreaterOrEqual(t, alerter.count(), 1)
	assert.ErrorIs(t, alerter.last, assert.AnError)
}

func TestSchedulerSeedsGuardFromDurableMarker(t *testing.T) {
	marker := time.Date(2024, 3, 31, 23, 2, 0, 0, time.UTC)
	store := &schedulerStore{marker: &marker}

	s := NewScheduler(noopRunner{}, store, zerolog.Nop())
	s.tick = time.Hour // never ticks within the test

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
	require.NotNil(t, s.last)
	assert.True(t, s.last.Equal(marker))
}

func TestSchedulerStopsDuringTickWait(t *testing.T) {
	store := &schedulerStore{}
	s := NewScheduler(noopRunner{}, store, zerolog.Nop())
	s.tick = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancellation while waiting")
	}
}
