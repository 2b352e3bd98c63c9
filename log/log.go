// Package log provides the engine's logging interface: a small Logger
// contract with chained key/value tags via With, backed by
// github.com/rs/zerolog for structured output.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// Root is the package-level default logger, overwritten by cmd/saed at
// startup once the configured level/format are known.
var Root Logger = &Default{z: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}

// Logger is the logging interface used throughout the engine. The variadic
// arguments are key/value pairs; the key must be a string.
type Logger interface {
	Debug(string, ...interface{})
	Error(string, ...interface{})
	Crit(string, ...interface{})
	With(...interface{}) Logger
}

// Default is the zerolog-backed Logger implementation.
type Default struct {
	z zerolog.Logger
}

// NewJSON returns a Default logger writing structured JSON at level to
// os.Stdout.
func NewJSON(level zerolog.Level) *Default {
	return &Default{z: zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()}
}

func (l *Default) Debug(m string, kv ...interface{}) { logWith(l.z.Debug(), m, kv) }
func (l *Default) Error(m string, kv ...interface{}) { logWith(l.z.Error(), m, kv) }

// Crit logs at error level with a "crit" marker. It never terminates the
// process — callers that need to stop on a critical condition do so
// explicitly, logging is not a control-flow mechanism.
func (l *Default) Crit(m string, kv ...interface{}) {
	logWith(l.z.Error().Bool("crit", true), m, kv)
}

func (l *Default) With(kv ...interface{}) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return &Default{z: ctx.Logger()}
}

func logWith(e *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
