// Package logger builds the application's zap logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the JSON log written inside the log directory.
const FileName = "app.log"

// New returns a logger that writes human-readable lines to stdout and JSON
// lines to <dir>/app.log.  An unknown level falls back to info.  The
// returned close function flushes and closes the file.
func New(level, dir string) (*zap.Logger, func(), error) {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			fmt.Fprintf(os.Stderr, "bad LOG_LEVEL=%s, fallback to info\n", level)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(Path(dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), lvl),
	)
	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))

	closeFn := func() {
		_ = log.Sync()
		_ = f.Close()
	}
	return log, closeFn, nil
}

// Path is the JSON log file location for dir.
func Path(dir string) string { return filepath.Join(dir, FileName) }
