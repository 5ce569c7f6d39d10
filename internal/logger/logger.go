package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. In development the output is human readable,
// everywhere else it is JSON suitable for Cloud Logging.
func New(env string) zerolog.Logger {
	// For Google Cloud Logging, the level field name should be "severity".
	zerolog.LevelFieldName = "severity"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stderr
	level := zerolog.InfoLevel
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}
