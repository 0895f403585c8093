// Package config loads process settings from the environment and bot
// definitions from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Env is the process configuration. Flags override it.
type Env struct {
	DBPath        string `env:"BIOMEBOT_DB"`
	Store         string `env:"BIOMEBOT_STORE" envDefault:"sqlite"`
	RedisAddr     string `env:"BIOMEBOT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"BIOMEBOT_REDIS_PASSWORD"`
	RedisDB       int    `env:"BIOMEBOT_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"BIOMEBOT_REDIS_PREFIX" envDefault:"biomebot"`
	LogLevel      string `env:"BIOMEBOT_LOG_LEVEL" envDefault:"warn"`
	Seed          uint64 `env:"BIOMEBOT_SEED" envDefault:"0"`
	BotFile       string `env:"BIOMEBOT_CONFIG" envDefault:"biomebot.yaml"`
}

// LoadEnv reads optional dotenv files (".env" when none are named) into the
// process environment and parses Env from it. Missing dotenv files are
// ignored; variables already set in the environment win.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if e.DBPath == "" {
		e.DBPath = DefaultDBPath()
	}
	switch e.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite, redis or memory)", e.Store)
	}
	return &e, nil
}

// DefaultDBPath is the SQLite path used when none is configured.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".biomebot", "state.db")
}

// RedisOptions returns client options for the configured Redis server.
func (e *Env) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     e.RedisAddr,
		Password: e.RedisPassword,
		DB:       e.RedisDB,
	}
}
