// Package logging provides the structured logging interface used across the
// service and its zap-backed implementation.  Components depend on the Logger
// interface and receive it by constructor injection; go.uber.org/zap is not
// imported outside this package.
//
// Initialisation order in cmd/*/main.go:
//
//  1. Load configuration.
//  2. NewLogger(cfg.Log), then SetDefault.
//  3. Build the remaining components with that Logger.
package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/turtacn/simpol/pkg/errors"
)

// Canonical field keys.
const (
	FieldRequestID = "request_id"
	FieldRunID     = "run_id"
	FieldSMILES    = "smiles"
	FieldErrorCode = "error_code"
	FieldComponent = "component"
)

// ─────────────────────────────────────────────────────────────────────────────
// Field
// ─────────────────────────────────────────────────────────────────────────────

// Field is a typed key-value pair attached to a log entry.
type Field = zap.Field

func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Float64s(key string, val []float64) Field     { return zap.Float64s(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }

// Err captures err under the key "error".  A nil err yields a no-op field.
func Err(err error) Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}

// ─────────────────────────────────────────────────────────────────────────────
// Level
// ─────────────────────────────────────────────────────────────────────────────

// Level is a logging severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) String() string { return string(l) }

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo, "":
		return LevelInfo, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	}
	return "", fmt.Errorf("logging: unknown level %q", s)
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logger interface
// ─────────────────────────────────────────────────────────────────────────────

// Logger is the structured logging contract.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal logs and then calls os.Exit(1).  Startup failures only.
	Fatal(msg string, fields ...Field)

	// With returns a child Logger carrying fields on every entry.
	With(fields ...Field) Logger
	// Named appends name to the logger name ("simpol" → "simpol.batch").
	Named(name string) Logger
	// WithContext attaches the request id stored in ctx, if any.
	WithContext(ctx context.Context) Logger
	// WithError attaches err, and its code when it is an AppError.
	WithError(err error) Logger

	// SetLevel changes the minimum level of this logger and every logger
	// derived from it.
	SetLevel(level Level)
	Sync() error
}

// LogConfig carries the parameters used to construct a Logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.  Empty means info.
	Level Level `mapstructure:"level" yaml:"level" json:"level"`
	// Format is "json" or "console".  Empty means json.
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// OutputPaths defaults to ["stderr"] when nil so stdout stays free for
	// reports and command output.
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// zapLogger
// ─────────────────────────────────────────────────────────────────────────────

type zapLogger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(fields...), level: l.level}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name), level: l.level}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return l.With(String(FieldRequestID, id))
	}
	return l
}

func (l *zapLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	fields := []Field{Err(err)}
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		fields = append(fields, String(FieldErrorCode, string(code)))
	}
	return l.With(fields...)
}

func (l *zapLogger) SetLevel(level Level) { l.level.SetLevel(level.zap()) }

func (l *zapLogger) Sync() error { return l.z.Sync() }

// NewLogger builds a zap-backed Logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	level, err := ParseLevel(string(cfg.Level))
	if err != nil {
		return nil, err
	}
	if cfg.OutputPaths == nil {
		cfg.OutputPaths = []string{"stderr"}
	}
	if len(cfg.OutputPaths) == 0 {
		return nil, fmt.Errorf("logging: no output paths")
	}

	encCfg := zap.NewProductionEncoderConfig()
	encoding := "json"
	if cfg.Format == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	atom := zap.NewAtomicLevelAt(level.zap())
	z, err := zap.Config{
		Level:            atom,
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build zap logger: %w", err)
	}
	return &zapLogger{z: z, level: atom}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core, typically a zaptest
// observer.  The returned logger's level can only be raised above the core's.
func NewLoggerFromCore(core zapcore.Core) Logger {
	atom := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	leveled, _ := zapcore.NewIncreaseLevelCore(core, atom)
	if leveled == nil {
		leveled = core
	}
	return &zapLogger{z: zap.New(leveled, zap.AddCallerSkip(1)), level: atom}
}

// ─────────────────────────────────────────────────────────────────────────────
// nopLogger
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)               {}
func (nopLogger) Info(string, ...Field)                {}
func (nopLogger) Warn(string, ...Field)                {}
func (nopLogger) Error(string, ...Field)               {}
func (nopLogger) Fatal(string, ...Field)               {}
func (n nopLogger) With(...Field) Logger               { return n }
func (n nopLogger) Named(string) Logger                { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
func (n nopLogger) WithError(error) Logger             { return n }
func (nopLogger) SetLevel(Level)                       {}
func (nopLogger) Sync() error                          { return nil }

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

// ─────────────────────────────────────────────────────────────────────────────
// Request id propagation
// ─────────────────────────────────────────────────────────────────────────────

type ctxKey struct{}

// WithRequestID stores id in ctx for WithContext to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// LogOperationDuration logs the elapsed time since start at info, or at warn
// when the operation took longer than a second.
func LogOperationDuration(l Logger, op string, start time.Time) {
	elapsed := time.Since(start)
	fields := []Field{String("operation", op), Int("duration_ms", int(elapsed.Milliseconds()))}
	if elapsed > time.Second {
		l.Warn("slow operation", fields...)
		return
	}
	l.Info("operation completed", fields...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Process default
// ─────────────────────────────────────────────────────────────────────────────

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// SetDefault replaces the process-wide default Logger.  nil is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default Logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

//Personal.AI order the ending
