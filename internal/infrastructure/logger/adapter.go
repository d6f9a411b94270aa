package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"browser-mcp/internal/application/port/output"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type Config struct {
	// Dir receives a JSON log file per process. Empty disables file output.
	Dir   string
	Level string
	// Console mirrors records to stderr. Stdout belongs to the stdio protocol.
	Console bool
}

type LoggerAdapter struct {
	zl   *zap.Logger
	file *os.File
}

func NewLoggerAdapter(name string, cfg Config) (*LoggerAdapter, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}

	var cores []zapcore.Core
	var file *os.File

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(name))
		f, err := os.Create(filepath.Join(cfg.Dir, filename))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		file = f

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	if cfg.Console {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level))
	}

	if len(cores) == 0 {
		return &LoggerAdapter{zl: zap.NewNop()}, nil
	}

	zl := zap.New(zapcore.NewTee(cores...)).With(zap.String("session_id", uuid.NewString()))
	return &LoggerAdapter{zl: zl, file: file}, nil
}

// NewNop discards everything.
func NewNop() *LoggerAdapter {
	return &LoggerAdapter{zl: zap.NewNop()}
}

// FromZap wraps an existing logger, e.g. one built with zaptest/observer.
func FromZap(zl *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{zl: zl}
}

func (l *LoggerAdapter) Zap() *zap.Logger { return l.zl }

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.zl.Debug(msg, fields(args)...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.zl.Info(msg, fields(args)...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.zl.Warn(msg, fields(args)...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.zl.Error(msg, fields(args)...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{zl: l.zl.With(zap.Any(key, value)), file: l.file}
}

func (l *LoggerAdapter) WithFields(fs map[string]any) output.LoggerPort {
	zf := make([]zap.Field, 0, len(fs))
	for k, v := range fs {
		zf = append(zf, zap.Any(k, v))
	}
	return &LoggerAdapter{zl: l.zl.With(zf...), file: l.file}
}

func (l *LoggerAdapter) Close() error {
	_ = l.zl.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// fields turns alternating key/value args into zap fields. A trailing key
// without a value is dropped; a non-string key is stringified.
func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if err, isErr := args[i+1].(error); isErr {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "session"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
