// Package logging holds the process logger. Loggers are charmbracelet/log
// loggers writing human-readable lines to stderr.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide logger.
var current atomic.Pointer[log.Logger]

// New returns a stderr logger at the named level.
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter returns a logger writing to w at the named level.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "gocleanup"})
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps "debug", "info", "warn" (or "warning") and "error" to a
// level, ignoring case. Anything else is info.
func ParseLevel(level string) log.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return log.WarnLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil || lvl == log.FatalLevel {
		return log.InfoLevel
	}
	return lvl
}

// Default returns the process logger, creating an info-level one on first
// use.
func Default() *log.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, New("info"))
	return current.Load()
}

// SetDefault replaces the process logger. A nil logger is ignored.
func SetDefault(l *log.Logger) {
	if l != nil {
		current.Store(l)
	}
}

// SetLevel changes the level of the process logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
