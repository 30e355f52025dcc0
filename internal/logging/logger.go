// Package logging builds the zap logger used across a figure run.
// Every subsystem logs through a named child logger so console lines carry
// the category that emitted them.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryProduce Category = "produce" // Batch orchestration
	CategoryDataset Category = "dataset" // CSV loading
	CategoryFigure  Category = "figure"  // Layout and file output
	CategoryChart   Category = "chart"   // Panel population, verbose diagnostics
)

// Options configures the logger.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool

	// JSON switches from console to JSON encoding.
	JSON bool

	// Level is the minimum level when not verbose: debug, info, warn or
	// error. Empty means info.
	Level string

	// OutputPaths defaults to stderr.
	OutputPaths []string

	// Sinks receive every entry in addition to OutputPaths.
	Sinks []zapcore.WriteSyncer

	// Enabled filters categories by the first segment of the logger name.
	// Nil enables every category.
	Enabled func(category string) bool
}

// New builds a production zap logger writing human-readable lines.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if opts.JSON {
		cfg.Encoding = "json"
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	var buildOpts []zap.Option
	if len(opts.Sinks) > 0 {
		enc := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		if opts.JSON {
			enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
		}
		extra := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(opts.Sinks...), cfg.Level)
		buildOpts = append(buildOpts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, extra)
		}))
	}
	if opts.Enabled != nil {
		buildOpts = append(buildOpts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return &categoryCore{Core: c, enabled: opts.Enabled}
		}))
	}
	logger, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger for a category. A nil parent yields a no-op logger.
func For(parent *zap.Logger, cat Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(cat))
}

// categoryCore drops entries from disabled categories.
type categoryCore struct {
	zapcore.Core
	enabled func(category string) bool
}

func (c *categoryCore) With(fields []zapcore.Field) zapcore.Core {
	return &categoryCore{Core: c.Core.With(fields), enabled: c.enabled}
}

func (c *categoryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	category, _, _ := strings.Cut(ent.LoggerName, ".")
	if category != "" && !c.enabled(category) {
		return ce
	}
	return c.Core.Check(ent, ce)
}
