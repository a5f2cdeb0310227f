// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     logging
// Description: Structured logging built on zerolog
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with a key-value call style shared by all services.
type Logger struct {
	zl      zerolog.Logger
	service string
}

var (
	globalLevel = zerolog.InfoLevel
	globalOut   io.Writer = os.Stderr
	globalMu    sync.RWMutex
)

// SetLevel sets the global log level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLevel = parseLevel(level)
}

// SetOutput redirects log output, e.g. away from a terminal the TUI owns.
func SetOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalOut = w
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger for the given service/component name.
func New(service string) *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	zl := zerolog.New(globalOut).
		Level(globalLevel).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &Logger{zl: zl, service: service}
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.emit(l.zl.Debug(), msg, kv)
}

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.emit(l.zl.Info(), msg, kv)
}

// Warn logs a warning with optional key-value pairs.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.emit(l.zl.Warn(), msg, kv)
}

// Error logs an error with optional key-value pairs.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.emit(l.zl.Error(), msg, kv)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		switch v := kv[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
