package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gridsight/meterhub/internal/domain"
)

// LatestElectrical returns the most recent electrical reading for a device,
// nil when the device has never reported.
func (r *Repos) LatestElectrical(ctx context.Context, deviceID int64) (*domain.ElectricalReading, error) {
	var row domain.ElectricalReading
	err := r.db.GetContext(ctx, &row, `
		SELECT id, device_id, timestamp, u1, u2, u3, i1, i2, i3,
		       p1, p2, p3, psum, aq1, aq2, aq3, ea, freq, cos
		FROM electrical_readings
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repos) LatestGas(ctx context.Context, deviceID int64) (*domain.GasReading, error) {
	var row domain.GasReading
	err := r.db.GetContext(ctx, &row, `
		SELECT id, device_id, timestamp, vol, flow, temp, press
		FROM gas_readings
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
