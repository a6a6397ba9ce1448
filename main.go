package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/httpserver"
	"github.com/robalobadob/bingo/internal/items"
	"github.com/robalobadob/bingo/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if _, _, err := items.Sample(); err != nil {
		log.Fatal().Err(err).Msg("failed to load sample card")
	}

	st, closeStore, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(st, httpserver.OptionsFromEnv())
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting bingo server")
	if err := srv.Run(ctx, ":"+port); err != nil {
		log.Error().Err(err).Msg("server exited")
		closeStore()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// openStore picks the backend from STORE (sqlite, the default, or memory).
func openStore() (store.Store, func(), error) {
	if getEnv("STORE", "sqlite") == "memory" {
		log.Info().Msg("using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}
	path := getEnv("DB_PATH", "./data/bingo.db")
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info().Str("path", path).Msg("using sqlite store")
	return store.NewSQLStore(db), func() { _ = db.Close() }, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
