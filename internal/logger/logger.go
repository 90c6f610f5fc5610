// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger builds the zap logger used by the server and adapters.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// Defaults applied by New when a LogConfig field is empty.
const (
	defaultLevel    = "info"
	defaultFormat   = "console"
	defaultOutput   = "console"
	defaultFilename = "logs/scholarsync.log"
)

// New builds a zap.Logger from cfg. Console output goes to stderr so that
// CLI results on stdout stay machine-readable.
func New(cfg types.LogConfig) (*zap.Logger, error) {
	cfg = withDefaults(cfg)

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	var writers []zapcore.WriteSyncer
	switch cfg.Output {
	case "console":
		writers = append(writers, zapcore.Lock(os.Stderr))
	case "file":
		writers = append(writers, zapcore.AddSync(fileWriter(cfg.File)))
	case "both":
		writers = append(writers, zapcore.Lock(os.Stderr), zapcore.AddSync(fileWriter(cfg.File)))
	default:
		return nil, fmt.Errorf("unknown log output %q (want console, file, or both)", cfg.Output)
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func withDefaults(cfg types.LogConfig) types.LogConfig {
	if cfg.Level == "" {
		cfg.Level = defaultLevel
	}
	if cfg.Format == "" {
		cfg.Format = defaultFormat
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.File.Filename == "" {
		cfg.File.Filename = defaultFilename
	}
	if cfg.File.MaxSize <= 0 {
		cfg.File.MaxSize = 100
	}
	return cfg
}

// fileWriter returns a lumberjack writer, creating the log directory first.
func fileWriter(cfg types.LogFileConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: creating log directory: %v\n", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}
