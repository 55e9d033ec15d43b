package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gridsight/meterhub/internal/cache"
	"github.com/gridsight/meterhub/internal/config"
	"github.com/gridsight/meterhub/internal/database"
	httpHandlers "github.com/gridsight/meterhub/internal/http"
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
	snaps := cache.New(config.RedisAddr())
	defer snaps.Close()
	sites := service.NewSites(repos, maps.Electrical, log.With().Str("component", "sites").Logger())

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	httpHandlers.Register(app, repos, snaps, sites)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
