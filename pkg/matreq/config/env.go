package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
)

// Env is the process configuration read from the environment. Command-line
// flags override it.
type Env struct {
	TablesDir      string  `env:"MATREQ_TABLES_DIR"`
	TemplatesDir   string  `env:"MATREQ_TEMPLATES_DIR"`
	InventoryPath  string  `env:"MATREQ_INVENTORY"`
	DBPath         string  `env:"MATREQ_DB"`
	Language       string  `env:"MATREQ_LANG"            envDefault:"en"`
	LogMode        string  `env:"MATREQ_LOG_MODE"        envDefault:"off"`
	FuzzyThreshold float64 `env:"MATREQ_FUZZY_THRESHOLD" envDefault:"0.8"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		return Env{}, fmt.Errorf("%w: MATREQ_FUZZY_THRESHOLD must be in (0, 1], got %v", internalerr.ErrInvalidConfig, cfg.FuzzyThreshold)
	}
	return cfg, nil
}
