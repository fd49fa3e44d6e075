package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error; anything else means info
	Format string // json or console
	// Service, when set, is attached to every line.
	Service string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// New builds the process logger. Request handlers derive child loggers
// from it and carry them in the context for zerolog.Ctx.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	lctx := zerolog.New(output).Level(parseLevel(cfg.Level)).With().Timestamp().Caller()
	if cfg.Service != "" {
		lctx = lctx.Str("service", cfg.Service)
	}
	return lctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel || lvl > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
