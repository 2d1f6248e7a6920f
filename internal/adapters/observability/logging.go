package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	return zerolog.New(consoleWriter(env)).With().Timestamp().Logger()
}

// NewLoggerWithFile mirrors NewLogger but additionally appends JSON records
// to the given file (the CLI's --log-file flag).
func NewLoggerWithFile(env, path string) (zerolog.Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, err
	}
	w := zerolog.MultiLevelWriter(consoleWriter(env), f)
	return zerolog.New(w).With().Timestamp().Logger(), nil
}

func consoleWriter(env string) io.Writer {
	if env == "dev" || env == "development" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
