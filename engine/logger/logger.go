// Package logger builds the charmbracelet loggers shared by the engine packages.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// New creates a logger writing to stderr with RFC3339 timestamps.
//
// Parameters:
//   - level: one of debug, info, warn, error, fatal (unknown values fall back to info)
//   - prefix: the prefix printed before every line
//
// Returns:
//   - *log.Logger: the configured logger
func New(level, prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, level, prefix)
}

// NewWithWriter creates a logger writing to w. Tests pass a buffer to inspect output.
func NewWithWriter(w io.Writer, level, prefix string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Default returns the package logger, creating it on first use at info level.
func Default() *log.Logger {
	once.Do(func() {
		if singleton == nil {
			singleton = New("info", "oxy")
		}
	})
	return singleton
}

// SetDefault replaces the package logger. Call it before any component captures Default.
func SetDefault(l *log.Logger) {
	once.Do(func() {})
	singleton = l
}

func Debug(msg any, keyvals ...any) {
	Default().Debug(msg, keyvals...)
}

func Info(msg any, keyvals ...any) {
	Default().Info(msg, keyvals...)
}

func Warn(msg any, keyvals ...any) {
	Default().Warn(msg, keyvals...)
}

func Error(msg any, keyvals ...any) {
	Default().Error(msg, keyvals...)
}
