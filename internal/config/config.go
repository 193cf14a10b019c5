// Package config carga la configuración del servicio desde el entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	StoreDriver    string
	SQLiteDSN      string
	BookCacheSize  int
	SeedCatalog    bool
	RabbitURL      string
	RabbitExchange string
	CORSOrigins    []string
	LogLevel       zerolog.Level
	LogPretty      bool
	ShutdownGrace  time.Duration
}

// Load lee un .env opcional y luego el entorno del proceso.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile es Load con un archivo dotenv explícito, que debe existir.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8000"),
		GRPCAddr:       os.Getenv("GRPC_ADDR"),
		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),
		SQLiteDSN:      getenv("SQLITE_DSN", ":memory:"),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		RabbitExchange: getenv("RABBITMQ_EXCHANGE", "bookstore.events"),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
	}
	if _, ok := os.LookupEnv("GRPC_ADDR"); !ok {
		cfg.GRPCAddr = ":50051"
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	var err error
	if cfg.BookCacheSize, err = strconv.Atoi(getenv("BOOK_CACHE_SIZE", "128")); err != nil || cfg.BookCacheSize < 0 {
		return Config{}, fmt.Errorf("BOOK_CACHE_SIZE: invalid value %q", os.Getenv("BOOK_CACHE_SIZE"))
	}
	if cfg.SeedCatalog, err = strconv.ParseBool(getenv("SEED_CATALOG", "true")); err != nil {
		return Config{}, fmt.Errorf("SEED_CATALOG: %w", err)
	}
	if cfg.LogPretty, err = strconv.ParseBool(getenv("LOG_PRETTY", "true")); err != nil {
		return Config{}, fmt.Errorf("LOG_PRETTY: %w", err)
	}
	if cfg.LogLevel, err = zerolog.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.ShutdownGrace, err = time.ParseDuration(getenv("SHUTDOWN_GRACE", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_GRACE: %w", err)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
