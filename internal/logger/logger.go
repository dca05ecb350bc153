// Package logger wraps zerolog.Logger with the constructors used across the
// task tracker. Embedding zerolog.Logger keeps the full zerolog API
// available on *Logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to stdout, tagged with the given
// role label (e.g. "server").
func New(role string) *Logger {
	zl := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{zl}
}

// Nop returns a logger that discards all output, for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
