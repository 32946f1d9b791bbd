// Package main runs the manifest normalization HTTP API.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"manifest-pipeline/api"
	"manifest-pipeline/db/postgres"
	"manifest-pipeline/pkg/platform"
)

func main() {
	platform.InitLogger()

	cfg := api.DefaultConfig()
	cfg.Port = platform.GetEnvInt("PORT", cfg.Port)

	var registry *postgres.Registry
	if dsn := platform.GetEnv("POSTGRES_DSN", ""); dsn != "" {
		var err error
		registry, err = postgres.Open(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open batch registry")
		}
		defer registry.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := registry.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure registry schema")
		}
		log.Info().Msg("batch registry connected")
	} else {
		log.Warn().Msg("POSTGRES_DSN not set; batches will not be recorded")
	}

	srv := api.NewServer(cfg, registry)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
