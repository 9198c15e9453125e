package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects process identity, configuration, and feature
// flags, then emits a single structured event summarising the cold-start
// state. Secrets are never registered here; SSM parameters are recorded
// by path only.
type StartupLogger struct {
	name         string
	commitHash   string
	buildTime    string
	initDuration time.Duration

	ssmParams map[string]string
	features  map[string]bool
	config    map[string]string
}

// NewStartupLogger creates a StartupLogger for the named process
// (e.g. "gateway-lambda").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:      name,
		ssmParams: make(map[string]string),
		features:  make(map[string]bool),
		config:    make(map[string]string),
	}
}

// CommitHash sets the git commit hash baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the UTC build timestamp baked into the binary at build time.
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

// SSMParam registers an SSM parameter path. Only the path is logged.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	s.ssmParams[label] = path
	return s
}

// Feature registers a boolean feature flag (e.g. "credentials", "gzip").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long initialization took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits the collected information as one INFO event.
func (s *StartupLogger) Log() {
	s.event(log.Info()).Msg("Cold start complete")
}

func (s *StartupLogger) event(evt *zerolog.Event) *zerolog.Event {
	process := zerolog.Dict().
		Str("name", s.name).
		Str("functionName", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")).
		Str("version", os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")).
		Str("region", os.Getenv("AWS_REGION")).
		Str("memoryMB", os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE")).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", os.Getenv("GEMINI_LOG_LEVEL"))

	if s.commitHash != "" {
		process = process.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		process = process.Str("buildTime", s.buildTime)
	}
	evt = evt.Dict("process", process)

	if len(s.ssmParams) > 0 {
		evt = evt.Dict("ssmParams", dictFromMap(s.ssmParams))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}
	return evt
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
