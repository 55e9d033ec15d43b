package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RollupRunner is what the scheduler fires.
type RollupRunner interface {
	RunMonthly(ctx context.Context, now time.Time) error
}

// Alerter is notified when a rollup run fails. Optional.
type Alerter interface {
	SendRollupAlert(now time.Time, err error) error
}

// Scheduler fires the monthly rollup at most once per calendar month. The
// qualifying window is dual: the late hours of the month's last day, or the
// first five minutes of the next month, so a tick missed exactly at the
// boundary still gets a second chance. The month guard lives in memory and is
// seeded from the durable marker at startup, so a restart straddling the
// window cannot miss the month.
type Scheduler struct {
	engine  RollupRunner
	monthly MonthlyStore
	alert   Alerter
	log     zerolog.Logger

	tick    time.Duration
	backoff time.Duration
	clock   func() time.Time
	last    *time.Time
}

func NewScheduler(engine RollupRunner, monthly MonthlyStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		engine:  engine,
		monthly: monthly,
		log:     log,
		tick:    time.Minute,
		backoff: 5 * time.Minute,
		clock:   time.Now,
	}
}

// WithAlerter enables failure notifications.
func (s *Scheduler) WithAlerter(a Alerter) *Scheduler {
	s.alert = a
	return s
}

// Run ticks once a minute until ctx is cancelled. A failed rollup leaves the
// month guard unset, logs, and backs off five minutes before resuming, so the
// next qualifying tick retries the full run.
func (s *Scheduler) Run(ctx context.Context) {
	if anchor, err := s.monthly.LastRollupMonth(ctx); err != nil {
		s.log.Warn().Err(err).Msg("rollup marker unavailable, starting with empty month guard")
	} else {
		s.last = anchor
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Read the clock at evaluation time: a tick buffered during
			// the failure backoff would otherwise carry a stale timestamp
			// into the fire decision and the rollup window.
			now := s.clock().UTC()
			if !shouldFire(now, s.last) {
				continue
			}
			if err := s.engine.RunMonthly(ctx, now); err != nil {
				s.log.Error().Err(err).Msg("monthly rollup failed, backing off")
				if s.alert != nil {
					if aerr := s.alert.SendRollupAlert(now, err); aerr != nil {
						s.log.Warn().Err(aerr).Msg("rollup alert failed")
					}
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.backoff):
				}
				continue
			}
			fired := now
			s.last = &fired
		}
	}
}

// shouldFire evaluates the dual month-boundary window and the once-per-month
// guard. isMonthEnd covers 23:00 onward of the month's last day, isMonthStart
// the first five minutes of day one.
func shouldFire(now time.Time, last *time.Time) bool {
	isMonthEnd := now.Day() == daysInMonth(now) && now.Hour() >= 23
	isMonthStart := now.Day() == 1 && now.Hour() == 0 && now.Minute() < 5
	if !isMonthEnd && !isMonthStart {
		return false
	}
	return last == nil || last.Month() != now.Month() || last.Year() != now.Year()
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
