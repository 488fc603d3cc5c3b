package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the run's identity, configuration, external tools
// and feature flags, then emits a single structured zerolog event. One line
// at the top of every run shows exactly how the batch was configured.
type StartupLogger struct {
	name         string
	runID        string
	initDuration time.Duration

	tools    map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given command
// (e.g. "photo", "video").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		tools:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// RunID sets the batch identifier.
func (s *StartupLogger) RunID(id string) *StartupLogger {
	s.runID = id
	return s
}

// Tool registers an external executable and its resolved location (or
// "unavailable").
func (s *StartupLogger) Tool(name, location string) *StartupLogger {
	s.tools[name] = location
	return s
}

// Feature registers a boolean feature flag (e.g. "describe", "dryRun").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
// Never pass the API key here.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took before the batch started.
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

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	s.LogTo(log.Logger)
}

// LogTo is Log against an explicit logger.
func (s *StartupLogger) LogTo(logger zerolog.Logger) {
	evt := logger.Info()

	runDict := zerolog.Dict().
		Str("command", s.name).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Str("logLevel", EnvOrDefault(LevelEnv, "info"))
	if s.runID != "" {
		runDict = runDict.Str("runId", s.runID)
	}
	evt = evt.Dict("run", runDict)

	if len(s.tools) > 0 {
		evt = evt.Dict("tools", dictFromMap(s.tools))
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

	evt.Msg("Rename run starting")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
