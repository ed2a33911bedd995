package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/unraid/api-oidc-state/internal/config"
)

// New builds the process logger. DEV gets a human readable console writer,
// everything else gets JSON on stderr.
func New(cfg config.EnvConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg config.EnvConfig, w io.Writer) zerolog.Logger {
	out := w
	if cfg.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(out).
		Level(cfg.GetLogLevel()).
		With().
		Timestamp().
		Str("app", cfg.GetAppName()).
		Logger()
}
