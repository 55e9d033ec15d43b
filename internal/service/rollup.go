package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gridsight/meterhub/internal/config"
	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
)

type DailyReader interface {
	SumDailyRange(ctx context.Context, deviceID int64, start, end time.Time) (float64, error)
}

type MonthlyStore interface {
	UpsertMonthlyBatch(ctx context.Context, records []domain.MonthlyConsumption, marker time.Time) error
	LastRollupMonth(ctx context.Context) (*time.Time, error)
}

// ReportArchiver receives the CSV summary of a completed rollup. Optional.
type ReportArchiver interface {
	ArchiveMonthlyReport(year, month int, data []byte) error
}

// Rollup folds the previous calendar month's daily consumption into monthly
// totals for every device in the configured site mappings.
type Rollup struct {
	daily   DailyReader
	monthly MonthlyStore
	maps    *config.SiteMaps
	archive ReportArchiver
	log     zerolog.Logger
}

func NewRollup(daily DailyReader, monthly MonthlyStore, maps *config.SiteMaps, log zerolog.Logger) *Rollup {
	return &Rollup{daily: daily, monthly: monthly, maps: maps, log: log}
}

// WithArchiver enables the post-commit CSV archive.
func (e *Rollup) WithArchiver(a ReportArchiver) *Rollup {
	e.archive = a
	return e
}

// RunMonthly recomputes the previous month's totals from scratch and writes
// them as one atomic batch together with the last-rollup marker. Re-running
// with unchanged daily data is a no-op on values, which makes retries after a
// failed commit safe.
func (e *Rollup) RunMonthly(ctx context.Context, now time.Time) error {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := monthStart.AddDate(0, -1, 0)
	lastDay := monthStart.AddDate(0, 0, -1)
	year, month := windowStart.Year(), int(windowStart.Month())

	var records []domain.MonthlyConsumption
	for _, mapping := range []config.SiteMapping{e.maps.Electrical, e.maps.Gas} {
		for _, site := range sortedSites(mapping) {
			for _, id := range mapping[site] {
				total, err := e.daily.SumDailyRange(ctx, id, windowStart, lastDay)
				if err != nil {
					return fmt.Errorf("sum daily consumption for device %d: %w", id, err)
				}
				records = append(records, domain.MonthlyConsumption{
					DeviceID:   id,
					Year:       year,
					Month:      month,
					Value:      total,
					AnchoredAt: windowStart,
				})
			}
		}
	}

	if err := e.monthly.UpsertMonthlyBatch(ctx, records, now); err != nil {
		return fmt.Errorf("monthly rollup %d-%02d: %w", year, month, err)
	}
	e.log.Info().Int("year", year).Int("month", month).Int("devices", len(records)).
		Msg("monthly rollup committed")

	if e.archive != nil {
		if err := e.archive.ArchiveMonthlyReport(year, month, rollupCSV(records)); err != nil {
			// The rollup itself is durable at this point; archiving is best effort.
			e.log.Warn().Err(err).Msg("rollup report archive failed")
		}
	}
	return nil
}

func sortedSites(mapping config.SiteMapping) []string {
	sites := make([]string, 0, len(mapping))
	for site := range mapping {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

func rollupCSV(records []domain.MonthlyConsumption) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"device_id", "year", "month", "value"})
	for _, rec := range records {
		_ = w.Write([]string{
			strconv.FormatInt(rec.DeviceID, 10),
			strconv.Itoa(rec.Year),
			strconv.Itoa(rec.Month),
			strconv.FormatFloat(rec.Value, 'f', -1, 64),
		})
	}
	w.Flush()
	return buf.Bytes()
}
