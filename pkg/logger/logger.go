// Package logger builds the root zerolog logger shared across Varuna.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls verbosity and output format.
type Config struct {
	Level  string // debug, info, warn, error; anything else falls back to info
	Pretty bool   // console writer instead of JSON lines
}

// New builds the root logger. Components derive scoped loggers from it
// with With().Str("component"|"service"|"handler", ...).
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("app", "varuna").
		Logger()
}

// SetGlobalLogger routes zerolog's package-level logger through l.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
