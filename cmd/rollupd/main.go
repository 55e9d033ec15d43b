package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gridsight/meterhub/internal/cloud"
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

	repos := repository.New(db)
	engine := service.NewRollup(repos, repos, maps, log.With().Str("component", "rollup").Logger())
	scheduler := service.NewScheduler(engine, repos, log.With().Str("component", "scheduler").Logger())

	if config.UseCloudServices() {
		if s3c, err := cloud.NewS3Client(config.AWSRegion(), config.S3Bucket()); err != nil {
			log.Warn().Err(err).Msg("s3 client unavailable, rollup reports disabled")
		} else {
			engine.WithArchiver(s3c)
		}
		if config.SNSTopicArn() != "" {
			if snsc, err := cloud.NewSNSClient(config.AWSRegion(), config.SNSTopicArn()); err != nil {
				log.Warn().Err(err).Msg("sns client unavailable, rollup alerts disabled")
			} else {
				scheduler.WithAlerter(snsc)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("rollup scheduler running")
	scheduler.Run(ctx)
	log.Info().Msg("rollup scheduler stopped")
}
