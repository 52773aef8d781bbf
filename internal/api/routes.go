package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultRateLimit = 60

type RouteOptions struct {
	MetricsEnabled bool
	RateLimit      int
}

func SetupRoutes(app *fiber.App, handler *Handler, opts RouteOptions) {
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	// Global middlewares
	app.Use(RequestID())
	app.Use(ErrorHandler())

	// Health checks (sem rate limiting)
	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.ReadinessCheck)

	if opts.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 - com rate limiting e métricas
	v1 := app.Group("/api/v1")
	v1.Use(RateLimiter(opts.RateLimit))
	v1.Use(PrometheusMiddleware())

	v1.Post("/dataset", handler.InspectDataset)

	report := v1.Group("/report")
	report.Post("/", handler.GenerateReport)
	report.Post("/pdf", handler.DownloadPDF)
	report.Post("/xlsx", handler.DownloadXLSX)
	report.Post("/chart", handler.DownloadChart)
	report.Post("/email", handler.SendReport)
}
