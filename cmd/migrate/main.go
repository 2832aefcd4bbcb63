// Aplica el esquema embebido (internal/infrastructure/postgres/migrations) sobre la base configurada.
package main

import (
	"context"
	"time"

	"github.com/jhoicas/colegio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/colegio-api/pkg/config"
	"github.com/jhoicas/colegio-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "migrate", Location: cfg.App.Location()})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
		log.Fatal().Err(err).Msg("migración")
	}
	log.Info().Msg("esquema al día")
}
