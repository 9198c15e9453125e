package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger from environment variables.
//
//	GEMINI_LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT:       console for human-readable output; anything else
//	                  keeps zerolog's JSON lines, which CloudWatch indexes
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("GEMINI_LOG_LEVEL")))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// ParseLevel maps a GEMINI_LOG_LEVEL value to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
