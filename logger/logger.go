// Package logger builds the proxy's shared zerolog.Logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/relaycache/llmproxy/config"
)

// New returns a zerolog.Logger configured for cfg.Env: a human-readable
// console writer in development, timestamped JSON otherwise.
func New(cfg *config.Config) zerolog.Logger {
	var out zerolog.ConsoleWriter
	var log zerolog.Logger
	lvl := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		lvl = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: os.Stderr}
		log = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(lvl)
	return log
}
