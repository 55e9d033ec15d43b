package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gridsight/meterhub/internal/domain"
)

// SumDailyRange sums a device's daily consumption over [start, end] inclusive.
// A device with no rows in the range sums to zero.
func (r *Repos) SumDailyRange(ctx context.Context, deviceID int64, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(value), 0)
		FROM daily_consumption
		WHERE device_id = $1 AND day >= $2 AND day <= $3`,
		deviceID, start, end)
	return total, err
}

// LatestTodayInRange returns the newest running-total value for a device with
// a timestamp inside [from, to], zero when there is none.
func (r *Repos) LatestTodayInRange(ctx context.Context, deviceID int64, from, to time.Time) (float64, error) {
	var value float64
	err := r.db.GetContext(ctx, &value, `
		SELECT value
		FROM today_totals
		WHERE device_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT 1`, deviceID, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, err
}

func (r *Repos) FindMonthly(ctx context.Context, deviceID int64, year, month int) (*domain.MonthlyConsumption, error) {
	var row domain.MonthlyConsumption
	err := r.db.GetContext(ctx, &row, `
		SELECT device_id, year, month, value, anchored_at
		FROM monthly_consumption
		WHERE device_id = $1 AND year = $2 AND month = $3`,
		deviceID, year, month)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repos) ListMonthlyByDevice(ctx context.Context, deviceID int64, year int) ([]domain.MonthlyConsumption, error) {
	var out []domain.MonthlyConsumption
	err := r.db.SelectContext(ctx, &out, `
		SELECT device_id, year, month, value, anchored_at
		FROM monthly_consumption
		WHERE device_id = $1 AND year = $2
		ORDER BY month`, deviceID, year)
	return out, err
}

// UpsertMonthlyBatch writes a full rollup run in one transaction: every
// monthly row plus the last-rollup marker. Any failure rolls the whole batch
// back, so reruns always start from a clean slate.
func (r *Repos) UpsertMonthlyBatch(ctx context.Context, records []domain.MonthlyConsumption, marker time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rollup batch: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO monthly_consumption (device_id, year, month, value, anchored_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (device_id, year, month)
			DO UPDATE SET value = EXCLUDED.value, anchored_at = EXCLUDED.anchored_at`,
			rec.DeviceID, rec.Year, rec.Month, rec.Value, rec.AnchoredAt); err != nil {
			return fmt.Errorf("upsert monthly device %d: %w", rec.DeviceID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rollup_state (id, month_anchor)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET month_anchor = EXCLUDED.month_anchor`,
		marker); err != nil {
		return fmt.Errorf("update rollup marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollup batch: %w", err)
	}
	return nil
}

// LastRollupMonth returns the durable last-rollup marker, nil before the
// first completed rollup.
func (r *Repos) LastRollupMonth(ctx context.Context) (*time.Time, error) {
	var anchor time.Time
	err := r.db.GetContext(ctx, &anchor,
		`SELECT month_anchor FROM rollup_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &anchor, nil
}
