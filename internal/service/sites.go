package service

import (
	"context"
	"sort"
	"time"

	"github.com/gridsight/meterhub/internal/config"
	"github.com/gridsight/meterhub/internal/domain"
	"github.com/rs/zerolog"
)

type TodayReader interface {
	LatestTodayInRange(ctx context.Context, deviceID int64, from, to time.Time) (float64, error)
}

// Sites sums the electrical mapping's today-so-far running totals per site.
type Sites struct {
	today   TodayReader
	mapping config.SiteMapping
	now     func() time.Time
	log     zerolog.Logger
}

func NewSites(today TodayReader, mapping config.SiteMapping, log zerolog.Logger) *Sites {
	return &Sites{today: today, mapping: mapping, now: time.Now, log: log}
}

// TodayTotals returns each configured site's total of its devices' latest
// running-total values within [start of today UTC, now]. A device without a
// row today, or whose read fails, contributes zero.
func (s *Sites) TodayTotals(ctx context.Context) (map[string]float64, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	totals := make(map[string]float64, len(s.mapping))
	for site, ids := range s.mapping {
		var sum float64
		for _, id := range ids {
			value, err := s.today.LatestTodayInRange(ctx, id, start, now)
			if err != nil {
				s.log.Warn().Int64("device_id", id).Str("site", site).Err(err).
					Msg("today total read failed, counting zero")
				continue
			}
			sum += value
		}
		totals[site] = sum
	}
	return totals, nil
}

// SortedSiteTotals flattens a totals map into a name-ordered slice, the shape
// published on the consumption topic.
func SortedSiteTotals(totals map[string]float64) []domain.SiteTotal {
	out := make([]domain.SiteTotal, 0, len(totals))
	for site, total := range totals {
		out = append(out, domain.SiteTotal{Site: site, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Site < out[j].Site })
	return out
}
