package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thirdedge/go-server/internal/dispatch"
	"github.com/thirdedge/go-server/internal/game"
	"github.com/thirdedge/go-server/internal/httpserver"
	"github.com/thirdedge/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st, err := buildStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize game store")
	}

	d := dispatch.New(st, game.NewRand())
	srv := httpserver.New(d)
	port := getEnv("PORT", "5176")
	log.Info().Str("port", port).Str("store", getEnv("STORE_BACKEND", "sqlite")).Msg("starting third-edge server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// buildStore selects the game store from STORE_BACKEND: sqlite (default),
// redis, or memory.
func buildStore() (store.Store, error) {
	switch getEnv("STORE_BACKEND", "sqlite") {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		})
		return store.NewRedis(client), nil
	default:
		db, err := openDB(getEnv("DB_PATH", "./data/thirdedge.db"))
		if err != nil {
			return nil, err
		}
		if err := migrate(db); err != nil {
			return nil, err
		}
		return store.NewSQLite(db), nil
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
