// Package logger wraps zerolog with the process-wide defaults used by the
// pipeline binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level   string
	Format  string
	Service string
	Writer  io.Writer
}

var root atomic.Pointer[zerolog.Logger]

// New builds a logger from opt without touching the root logger.
func New(opt Options) zerolog.Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	return ctx.Logger()
}

// Init installs the root logger returned by Get and Named.
func Init(opt Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	l := New(opt)
	root.Store(&l)
	return l
}

// Get returns the root logger, or a disabled logger before Init.
func Get() zerolog.Logger {
	if l := root.Load(); l != nil {
		return *l
	}
	return zerolog.Nop()
}

// Named returns a child of the root logger with a component field.
func Named(component string) zerolog.Logger {
	l := Get()
	if component == "" {
		return l
	}
	return l.With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
