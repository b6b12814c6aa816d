package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a human-readable console logger writing to out at the named
// level ("debug", "info", ...). An empty level means info.
func New(level string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    true,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// JSON returns a logger emitting one JSON object per line, for the server.
func JSON(level string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func Nop() zerolog.Logger { return zerolog.Nop() }

func parseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logger: level %q: %w", level, err)
	}
	return lvl, nil
}
