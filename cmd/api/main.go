package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/colegio-api/internal/app"
	httpRouter "github.com/jhoicas/colegio-api/internal/interfaces/http"
	"github.com/jhoicas/colegio-api/pkg/config"
	"github.com/jhoicas/colegio-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    cfg.Log.Level,
		Service:  "api",
		Location: cfg.App.Location(),
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("tz", cfg.App.Timezone).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.Bank.WebhookSecret == "" {
		log.Warn().Msg("BANK_WEBHOOK_SECRET vacío: todas las notificaciones bancarias serán rechazadas")
	}

	ctx := context.Background()
	repos, closeRepos, err := app.OpenRepositories(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("persistencia")
	}
	defer closeRepos()

	c, err := app.Build(cfg, repos, nil, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("armar casos de uso")
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB << 20,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(requestid.New())
	fiberApp.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	fiberApp.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Colegio API - Tesorería",
	}))

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(fiberApp, httpRouter.RouterDeps{
		AuthUC:          c.Auth,
		SchoolYearUC:    c.SchoolYears,
		ProcedureTypeUC: c.ProcedureType,
		RequestUC:       c.Requests,
		PaymentUC:       c.Payments,
		ReceiptUC:       c.Receipts,
		PensionUC:       c.Pensions,
		LateFeeUC:       c.LateFees,
		RevisionUC:      c.Revisions,
		ExonerationUC:   c.Exonerations,
		ReconcileUC:     c.Reconcile,
		DashboardUC:     c.Dashboard,
		Attachments:     c.Attachments,
		JWTSecret:       cfg.JWT.Secret,
		CronToken:       cfg.Cron.Token,
		BankKey:         cfg.Bank.APIKey,
		Log:             log.Zerolog(),
		ExposeError:     cfg.App.IsDevelopment(),
	})

	go func() {
		if err := fiberApp.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
