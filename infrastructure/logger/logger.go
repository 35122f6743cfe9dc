package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how verbosely the analyzer logs.
type Config struct {
	Level string
	// Path, when set, sends logs to a rotated file instead of stderr.
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// New builds a console-encoded logger. The returned func flushes it and
// releases the log file, if any.
func New(cfg Config) (*zap.SugaredLogger, func() error, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	writeSyncer := zapcore.AddSync(os.Stderr)
	var file *lumberjack.Logger
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    orDefault(cfg.MaxSize, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAge, 30),
			Compress:   cfg.Compress,
		}
		writeSyncer = zapcore.AddSync(file)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), writeSyncer, level)
	log := zap.New(core).Sugar()

	closeFn := func() error {
		// Syncing stderr fails on some terminals.
		_ = log.Sync()
		return nil
	}
	if file != nil {
		closeFn = func() error {
			return errors.Join(log.Sync(), file.Close())
		}
	}
	return log, closeFn, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
