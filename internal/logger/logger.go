// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds a zerolog.Logger writing structured JSON to w.
func Setup(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetupDefault installs the global logger. In local development set
// LOG_PRETTY=1 for human-readable console output.
func SetupDefault() {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	if os.Getenv("LOG_PRETTY") != "" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	log.Logger = Setup(w)
}
