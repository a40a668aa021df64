package config

import (
	"github.com/caarlos0/env/v10"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	DatabaseURL  string        `env:"POSITIONS_DATABASE_URL"`
	ClosedPolicy string        `env:"POSITIONS_CLOSED_POLICY" envDefault:"retain"`
	LogLevel     zapcore.Level `env:"POSITIONS_LOG_LEVEL" envDefault:"info"`
	Progress     bool          `env:"POSITIONS_PROGRESS" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	return cfg, env.Parse(&cfg)
}
