package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ServerEnv holds process settings for cmd/server.
type ServerEnv struct {
	HTTPAddr    string `env:"RNGCRACK_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string `env:"RNGCRACK_GRPC_ADDR" envDefault:":9090"`
	ConfigDir   string `env:"RNGCRACK_CONFIG_DIR" envDefault:"config"`
	Catalog     string `env:"RNGCRACK_CATALOG"`
	MaxSessions int    `env:"RNGCRACK_MAX_SESSIONS" envDefault:"1024"`
	Watch       bool   `env:"RNGCRACK_WATCH" envDefault:"true"`
	LogLevel    string `env:"RNGCRACK_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"RNGCRACK_LOG_FORMAT" envDefault:"text"`
}

// LoadEnv reads optional dotenv files (".env" when none are named) and then
// parses the environment.
func LoadEnv(files ...string) (ServerEnv, error) {
	_ = godotenv.Load(files...)
	var cfg ServerEnv
	if err := env.Parse(&cfg); err != nil {
		return ServerEnv{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxSessions < 1 {
		return ServerEnv{}, fmt.Errorf("%w: RNGCRACK_MAX_SESSIONS must be >= 1", ErrConfig)
	}
	return cfg, nil
}
