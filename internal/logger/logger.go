// Package logger configures the process-global zerolog logger. Every package
// logs through the zerolog/log globals, so Init must run before anything else
// emits a line.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output format. Development environments get
// the human-readable console writer; everything else emits JSON with unix-ms
// timestamps.
func Init(level, environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	parsed, parseErr := zerolog.ParseLevel(strings.ToLower(level))
	if parseErr != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	var out io.Writer = os.Stdout
	switch strings.ToLower(environment) {
	case "development", "dev":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	if parseErr != nil {
		log.Warn().Str("level", level).Msg("Unknown log level, falling back to info")
	}

	// Anything still using the standard library logger (http.Server error
	// logs, for one) is routed through zerolog.
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
