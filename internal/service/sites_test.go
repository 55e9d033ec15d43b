package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridsight/meterhub/internal/config"
	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToday struct {
	values map[int64]float64
	errIDs map[int64]bool
	from   time.Time
	to     time.Time
}

func (f *fakeToday) LatestTodayInRange(ctx context.Context, deviceID int64, from, to time.Time) (float64, error) {
	f.from, f.to = from, to
	if f.errIDs[deviceID] {
		return 0, errors.New("timeout")
	}
	return f.values[deviceID], nil
}

func TestTodayTotalsSumsPerSite(t *testing.T) {
	today := &fakeToday{values: map[int64]float64{101: 12.5, 102: 7.5}}
	sites := NewSites(today, config.SiteMapping{"SiteA": {101, 102}}, zerolog.Nop())
	sites.now = func() time.Time { return time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC) }

	totals, err := sites.TodayTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"SiteA": 20.0}, totals)

	// Window is start of today UTC through now.
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), today.from)
	assert.Equal(t, time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC), today.to)
}

func TestTodayTotalsAbsentDeviceCountsZero(t *testing.T) {
	today := &fakeToday{values: map[int64]float64{101: 3.25}}
	sites := NewSites(today, config.SiteMapping{"SiteA": {101, 999}}, zerolog.Nop())

	totals, err := sites.TodayTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.25, totals["SiteA"])
}

func TestTodayTotalsReadFailureCountsZero(t *testing.T) {
	today := &fakeToday{
		values: map[int64]float64{101: 5, 102: 2},
		errIDs: map[int64]bool{102: true},
	}
	sites := NewSites(today, config.SiteMapping{"SiteA": {101, 102}}, zerolog.Nop())

	totals, err := sites.TodayTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.0, totals["SiteA"])
}

func TestSortedSiteTotals(t *testing.T) {
	out := SortedSiteTotals(map[string]float64{"Zeta": 1, "Alpha": 2})
	assert.Equal(t, []domain.SiteTotal{{Site: "Alpha", Total: 2}, {Site: "Zeta", Total: 1}}, out)
}
