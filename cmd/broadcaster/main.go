package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridsight/meterhub/internal/broadcast"
	"github.com/gridsight/meterhub/internal/cache"
	"github.com/gridsight/meterhub/internal/config"
	"github.com/gridsight/meterhub/internal/database"
	"github.com/gridsight/meterhub/internal/repository"
	"github.com/gridsight/meterhub/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	maps, err := config.LoadSiteMaps(config.SiteMapFile())
	if err != nil {
		log.Fatal().Err(err).Msg("site map load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	pub, err := broadcast.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect failed")
	}
	defer pub.Close()

	repos := repository.New(db)
	snaps := cache.New(config.RedisAddr())
	defer snaps.Close()

	catalog := service.NewCatalog(repos, log.With().Str("component", "catalog").Logger())
	builder := service.NewSnapshots(repos, repos, catalog, log.With().Str("component", "snapshots").Logger())
	sites := service.NewSites(repos, maps.Electrical, log.With().Str("component", "sites").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	period := time.Duration(config.SnapshotPeriod()) * time.Second
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info().Dur("period", period).Msg("broadcaster running")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("broadcaster stopping")
			return
		case <-ticker.C:
			cycle(ctx, builder, sites, pub, snaps)
		}
	}
}

// cycle runs one broadcast: device envelopes and site totals out to MQTT,
// both mirrored into the cache for the read API. Failures are logged only;
// observers simply see the next successful cycle.
func cycle(ctx context.Context, builder *service.Snapshots, sites *service.Sites, pub *broadcast.Publisher, snaps *cache.SnapshotCache) {
	batch, err := builder.BuildAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot build failed")
	} else {
		if err := pub.Publish(broadcast.TopicDeviceData, batch); err != nil {
			log.Error().Err(err).Msg("device broadcast failed")
		}
		if err := snaps.StoreDevices(ctx, batch); err != nil {
			log.Warn().Err(err).Msg("device cache refresh failed")
		}
	}

	byName, err := sites.TodayTotals(ctx)
	if err != nil {
		log.Error().Err(err).Msg("site totals failed")
		return
	}
	totals := service.SortedSiteTotals(byName)
	if err := pub.Publish(broadcast.TopicConsumptionToday, totals); err != nil {
		log.Error().Err(err).Msg("site totals broadcast failed")
	}
	if err := snaps.StoreSiteTotals(ctx, totals); err != nil {
		log.Warn().Err(err).Msg("site totals cache refresh failed")
	}
}
