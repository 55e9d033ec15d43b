package service

import (
	"context"

	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
)

type DeviceCatalog interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
}

type ReadingReader interface {
	LatestElectrical(ctx context.Context, deviceID int64) (*domain.ElectricalReading, error)
	LatestGas(ctx context.Context, deviceID int64) (*domain.GasReading, error)
}

// Snapshots assembles the per-device broadcast batch: latest reading per
// device, projected through the vendor schema. Publishing is the caller's job.
type Snapshots struct {
	devices  DeviceCatalog
	readings ReadingReader
	catalog  *Catalog
	log      zerolog.Logger
}

func NewSnapshots(devices DeviceCatalog, readings ReadingReader, catalog *Catalog, log zerolog.Logger) *Snapshots {
	return &Snapshots{devices: devices, readings: readings, catalog: catalog, log: log}
}

// BuildAll produces one envelope per device that has a reading and a
// non-empty projection. Devices of unknown kind, devices that never reported
// and devices projecting nothing are left out of the batch; per-device
// failures are logged and never abort the cycle.
func (s *Snapshots) BuildAll(ctx context.Context) ([]domain.DeviceEnvelope, error) {
	devices, err := s.devices.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]domain.DeviceEnvelope, 0, len(devices))
	for _, dev := range devices {
		row := s.latestReading(ctx, dev)
		if row == nil {
			continue
		}

		allow, meta, err := s.catalog.Resolve(ctx, dev)
		if err != nil {
			s.log.Warn().Int64("device_id", dev.ID).Err(err).
				Msg("schema resolution failed, using unfiltered projection")
			allow, meta = nil, nil
		}

		params := Project(row, allow, meta, dev.VendorName.String)
		if len(params) == 0 {
			continue
		}

		values := make(map[string]float64, len(params))
		for _, p := range params {
			values[p.Code] = p.Value
		}

		var siteName *string
		if dev.SiteName.Valid {
			name := dev.SiteName.String
			siteName = &name
		}

		batch = append(batch, domain.DeviceEnvelope{
			DeviceID:   dev.ID,
			Name:       dev.Name,
			SiteName:   siteName,
			Status:     dev.Status(),
			SortKey:    dev.SortKey,
			Values:     values,
			Params:     params,
			CapturedAt: row.Taken(),
		})
	}
	return batch, nil
}

// latestReading picks the fetch strategy by device kind. Unknown kinds and
// fetch failures resolve to nil, dropping the device from the batch.
func (s *Snapshots) latestReading(ctx context.Context, dev domain.Device) domain.ReadingRow {
	switch dev.Kind {
	case domain.KindElectrical:
		row, err := s.readings.LatestElectrical(ctx, dev.ID)
		if err != nil {
			s.log.Warn().Int64("device_id", dev.ID).Err(err).Msg("latest electrical reading failed")
			return nil
		}
		if row == nil {
			return nil
		}
		return row
	case domain.KindGas:
		row, err := s.readings.LatestGas(ctx, dev.ID)
		if err != nil {
			s.log.Warn().Int64("device_id", dev.ID).Err(err).Msg("latest gas reading failed")
			return nil
		}
		if row == nil {
			return nil
		}
		return row
	default:
		return nil
	}
}
