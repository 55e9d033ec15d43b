package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gridsight/meterhub/internal/cache"
	"github.com/gridsight/meterhub/internal/repository"
	"github.com/gridsight/meterhub/internal/service"
)

func Register(app *fiber.App, repos *repository.Repos, snaps *cache.SnapshotCache, sites *service.Sites) {
	g := app.Group("/")

	g.Get("devices/latest", func(c *fiber.Ctx) error {
		batch, err := snaps.LatestDevices(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(batch)
	})

	g.Get("sites/today", func(c *fiber.Ctx) error {
		totals, err := snaps.LatestSiteTotals(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if totals == nil {
			// Cache cold; compute live.
			byName, err := sites.TodayTotals(c.Context())
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			totals = service.SortedSiteTotals(byName)
		}
		return c.JSON(totals)
	})

	g.Get("devices/:id/monthly", func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad device id"})
		}
		year := c.QueryInt("year")
		if year == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "year required"})
		}
		if month := c.QueryInt("month"); month > 0 {
			rec, err := repos.FindMonthly(c.Context(), id, year, month)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
			if rec == nil {
				return c.Status(404).JSON(fiber.Map{"error": "no rollup for month"})
			}
			return c.JSON(rec)
		}
		rows, err := repos.ListMonthlyByDevice(c.Context(), id, year)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(rows)
	})
}
