// Scheduler en proceso: alternativa al cron externo que invoca /api/cron/*.
// Genera la pensión del mes y aplica moras según CRON_PENSION_SPEC y CRON_LATE_FEE_SPEC
// (formato de robfig/cron con segundos).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/colegio-api/internal/app"
	"github.com/jhoicas/colegio-api/pkg/config"
	"github.com/jhoicas/colegio-api/pkg/logger"
)

const jobTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "scheduler", Location: cfg.App.Location()})

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

	sched := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.App.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if _, err := sched.AddFunc(cfg.Cron.PensionSpec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		sum, err := c.Pensions.GenerateForActiveYears(jobCtx, 0, 0)
		if err != nil {
			log.Error().Err(err).Msg("cron pensiones")
			return
		}
		log.Info().
			Int("month", sum.Month).Int("year", sum.Year).
			Int("created", sum.Created).Int("existing", sum.Existing).
			Int("failed", sum.Failed).
			Msg("cron pensiones")
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Cron.PensionSpec).Msg("CRON_PENSION_SPEC inválido")
	}

	if _, err := sched.AddFunc(cfg.Cron.LateFeeSpec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		res, err := c.LateFees.ApplyLateFees(jobCtx, time.Time{})
		if err != nil {
			log.Error().Err(err).Msg("cron moras")
			return
		}
		log.Info().Str("as_of", res.AsOf).Int64("affected", res.Affected).Msg("cron moras")
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Cron.LateFeeSpec).Msg("CRON_LATE_FEE_SPEC inválido")
	}

	sched.Start()
	log.Info().
		Str("pension_spec", cfg.Cron.PensionSpec).
		Str("late_fee_spec", cfg.Cron.LateFeeSpec).
		Msg("scheduler iniciado")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Espera a que terminen los jobs en curso.
	<-sched.Stop().Done()
	log.Info().Msg("scheduler detenido")
}
