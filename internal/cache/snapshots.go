package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gridsight/meterhub/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	devicesKey = "meterhub:devices:latest"
	sitesKey   = "meterhub:sites:today"

	// Entries outlive a few missed broadcast cycles, then expire rather
	// than serving stale data indefinitely.
	ttl = 5 * time.Minute
)

// SnapshotCache keeps the most recent broadcast batch in Redis so the read
// API never touches the reading tables.
type SnapshotCache struct {
	rdb *redis.Client
}

func New(addr string) *SnapshotCache {
	return &SnapshotCache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *SnapshotCache) StoreDevices(ctx context.Context, batch []domain.DeviceEnvelope) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, devicesKey, data, ttl).Err()
}

func (c *SnapshotCache) LatestDevices(ctx context.Context) ([]domain.DeviceEnvelope, error) {
	data, err := c.rdb.Get(ctx, devicesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var batch []domain.DeviceEnvelope
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *SnapshotCache) StoreSiteTotals(ctx context.Context, totals []domain.SiteTotal) error {
	data, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sitesKey, data, ttl).Err()
}

func (c *SnapshotCache) LatestSiteTotals(ctx context.Context) ([]domain.SiteTotal, error) {
	data, err := c.rdb.Get(ctx, sitesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var totals []domain.SiteTotal
	if err := json.Unmarshal(data, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

func (c *SnapshotCache) Close() error { return c.rdb.Close() }
