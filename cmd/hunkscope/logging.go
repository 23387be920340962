package main

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ludo-technologies/hunkscope/internal/config"
)

// configureLogger points the global slog logger at a rotating log file.
// It logs at the configured level, or at debug when verbose is set.
func configureLogger(cfg config.LogConfig, verbose bool) io.Closer {
	logPath := cfg.Filename
	if strings.TrimSpace(logPath) == "" {
		logPath = config.DefaultLogFilename
	}

	logLevel, _ := config.ParseLogLevel(cfg.Level)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
	return logWriter
}
