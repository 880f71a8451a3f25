// Package saqlog wires up structured logging for the estimator core's
// construction-time and demo-harness diagnostics, mirroring the teacher's
// internal/logging package: a small Config, a zap.Logger builder, and a
// prometheus counter for entries emitted at warn level or above.
//
// The hot-path estimator methods (CompFastDist, CompAccurateDist, buffer
// Insert/Pop) never log, and no internal package logs at all; the only
// caller is the cmd/saqbench demo harness, which logs its own progress and
// its config and construction failures.
package saqlog

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var warnAndAboveTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "saqcore_log_warn_or_above_total",
	Help: "Total number of warn-level-or-above log entries emitted by the estimation core.",
})

// Config controls the logger's format and minimum level.
type Config struct {
	Format string // "json" or "console"
	Level  string // "debug", "info", "warn", "error"
	Output zapcore.WriteSyncer
}

// DefaultConfig returns sensible defaults: JSON to stdout at info level.
func DefaultConfig() Config {
	return Config{Format: "json", Level: "info", Output: zapcore.AddSync(os.Stdout)}
}

// New builds a zap.Logger from cfg, installing a hook that counts
// warn-or-above entries via Prometheus.
func New(cfg Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	output := cfg.Output
	if output == nil {
		output = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, output, level)
	logger := zap.New(core, zap.Hooks(func(entry zapcore.Entry) error {
		if entry.Level >= zapcore.WarnLevel {
			warnAndAboveTotal.Inc()
		}
		return nil
	}))
	return logger, nil
}
