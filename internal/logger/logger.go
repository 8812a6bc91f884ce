// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embedded as a go-flags option group.
type Logger struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
	Output string `long:"log-output" env:"LOG_OUTPUT" description:"Log output" choice:"stderr" choice:"stdout" default:"stderr"`
}

// Setup applies the options to the global logger.
func (l *Logger) Setup() {
	log.Logger = l.New()

	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// New builds a logger from the options without touching global state.
func (l *Logger) New() zerolog.Logger {
	var out io.Writer = os.Stderr
	if l.Output == "stdout" {
		out = os.Stdout
	}

	if l.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
