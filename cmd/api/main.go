package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/jeovahfialho/faturamento-report/internal/api"
	"github.com/jeovahfialho/faturamento-report/internal/config"
	"github.com/jeovahfialho/faturamento-report/internal/ingestion"
	"github.com/jeovahfialho/faturamento-report/internal/notify"
	"github.com/jeovahfialho/faturamento-report/internal/service"
	pkglogger "github.com/jeovahfialho/faturamento-report/pkg/logger"
)

// @title Relatório de Faturamento API
// @version 1.0
// @description API para gerar relatórios de pedidos FATURADOS por cliente

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
func main() {
	cfg := config.Load()

	if err := pkglogger.Init(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		log.Fatal("Erro ao inicializar logger:", err)
	}
	defer pkglogger.Close()

	if err := cfg.Validate(); err != nil {
		pkglogger.Fatal("configuração inválida", zap.Error(err))
	}

	mailer := notify.NewMailer(cfg.MailConfig())
	if !mailer.Enabled() {
		pkglogger.Warn("envio de e-mail desabilitado: EMAIL_REMETENTE e SENHA_REMETENTE não configuradas")
	}

	if ingestion.LocalAvailable(cfg.LocalFile) {
		pkglogger.Info("planilha local disponível", zap.String("path", cfg.LocalFile))
	}

	// Services
	loader := ingestion.NewLoader(ingestion.NewDownloader(cfg.FetchTimeout))
	reports := service.NewReportService(loader, mailer, cfg.SheetName)

	// Handler
	handler := api.NewHandler(reports, cfg.LocalFile, cfg.RemoteURL)

	// Fiber app
	app := fiber.New(fiber.Config{
		Prefork:                 false,
		ServerHeader:            "Faturamento-Report",
		DisableStartupMessage:   false,
		AppName:                 "Relatório de Faturamento v" + api.Version,
		ReadTimeout:             cfg.APIReadTimeout,
		WriteTimeout:            cfg.APIWriteTimeout,
		IdleTimeout:             120 * time.Second,
		ReadBufferSize:          8192,
		WriteBufferSize:         8192,
		ProxyHeader:             "X-Forwarded-For",
		EnableTrustedProxyCheck: true,
		BodyLimit:               cfg.UploadLimitMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	// Setup routes
	api.SetupRoutes(app, handler, api.RouteOptions{
		MetricsEnabled: cfg.MetricsEnabled,
		RateLimit:      cfg.APIRateLimit,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		pkglogger.Info("encerrando servidor")
		if err := app.Shutdown(); err != nil {
			pkglogger.Error("erro ao encerrar servidor", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	pkglogger.Info("iniciando servidor", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		pkglogger.Fatal("erro no servidor", zap.Error(err))
	}
}
