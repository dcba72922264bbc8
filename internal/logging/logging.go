// Package logging builds the zap logger shared by the CLI, the engine and the server.
package logging

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys used across packages.
const (
	FieldCandidateID  = "candidate_id"
	FieldJobID        = "job_id"
	FieldTier         = "subscription_tier"
	FieldModelName    = "model_name"
	FieldModelVersion = "model_version"
	FieldRequestID    = "request_id"
)

// New builds a logger from the log section of the configuration.
// Logs go to stderr so that command output on stdout stays machine readable.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoding := "console"
	if cfg.Format == "json" {
		encoding = "json"
	}

	zcfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.MillisDurationEncoder,
		},
	}
	return zcfg.Build()
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// WithPair attaches candidate and job identifiers, skipping empty ones.
func WithPair(logger *zap.Logger, candidateID, jobID string) *zap.Logger {
	logger = OrNop(logger)
	fields := make([]zap.Field, 0, 2)
	if id := strings.TrimSpace(candidateID); id != "" {
		fields = append(fields, zap.String(FieldCandidateID, id))
	}
	if id := strings.TrimSpace(jobID); id != "" {
		fields = append(fields, zap.String(FieldJobID, id))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
