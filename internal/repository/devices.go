package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gridsight/meterhub/internal/domain"
)

func (r *Repos) ListDevices(ctx context.Context) ([]domain.Device, error) {
	var out []domain.Device
	err := r.db.SelectContext(ctx, &out, `
		SELECT d.id, d.name, d.kind, d.vendor_id, v.name AS vendor_name,
		       d.site_id, s.name AS site_name, d.active, d.sort_key
		FROM devices d
		LEFT JOIN vendors v ON v.id = d.vendor_id
		LEFT JOIN sites s ON s.id = d.site_id
		ORDER BY d.sort_key, d.id`)
	return out, err
}

// SchemaFor returns the vendor's raw parameter schema blob, empty when the
// vendor is unknown or declares none.
func (r *Repos) SchemaFor(ctx context.Context, vendorID int64) (string, error) {
	var blob sql.NullString
	err := r.db.GetContext(ctx, &blob,
		`SELECT param_schema FROM vendors WHERE id = $1`, vendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return blob.String, nil
}
