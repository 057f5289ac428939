// Package logging builds the zerolog loggers used across rayvision.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "RAYVISION_LOG_LEVEL"

// New returns a console logger tagged with app. The level comes from
// RAYVISION_LOG_LEVEL and defaults to info. A nil w writes to stderr.
func New(app string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}
	return zerolog.New(output).
		Level(Level(os.Getenv(EnvLevel))).
		With().Timestamp().Str("app", app).
		Logger()
}

// Level parses a level name. Unknown or empty names yield info.
func Level(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
