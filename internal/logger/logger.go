// Package logger builds the zap loggers used by the command-line tools.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New returns a logger for mode: "dev" writes console lines at
// debug level, "prod" writes JSON at info level, "off" or "" discards
// everything.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "off", "none":
		return zap.NewNop(), nil
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
