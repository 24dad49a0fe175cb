// Package logging picks the process-wide log profile and applies
// environment overrides on top of it.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	logs "github.com/danmuck/mcwire/internal/logs"
)

const (
	EnvLogLevel     = "MCWIRE_LOG_LEVEL"
	EnvLogTimestamp = "MCWIRE_LOG_TIMESTAMP"
	EnvLogNoColor   = "MCWIRE_LOG_NOCOLOR"
	EnvLogBypass    = "MCWIRE_LOG_BYPASS"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileCLI
	ProfileTest
)

type profileDefaults struct {
	level     logs.Level
	timestamp bool
}

// ProfileCLI logs only warnings so command output stays on top.
var profiles = map[Profile]profileDefaults{
	ProfileRuntime: {level: logs.InfoLevel, timestamp: true},
	ProfileCLI:     {level: logs.WarnLevel, timestamp: false},
	ProfileTest:    {level: logs.DebugLevel, timestamp: false},
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureCLI() {
	Configure(ProfileCLI)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure applies profile once per process; later calls are no-ops.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile, os.Stderr)
		applyEnvOverrides(&cfg, os.Getenv)
		logs.Configure(cfg)
	})
}

func defaultConfig(profile Profile, out io.Writer) logs.Config {
	cfg := logs.DefaultConfig()
	cfg.Out = out
	d, ok := profiles[profile]
	if !ok {
		d = profiles[ProfileRuntime]
	}
	cfg.Level = d.level
	cfg.Timestamp = d.timestamp
	return cfg
}

func applyEnvOverrides(cfg *logs.Config, getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(getenv(EnvLogBypass)); ok {
		cfg.Bypass = v
	}
}

// ParseLevel maps a user-facing level name to a log level.
func ParseLevel(raw string) (logs.Level, bool) {
	return parseLevel(raw)
}

func parseLevel(raw string) (logs.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return logs.InfoLevel, false
	case "diagnostics":
		name = "trace"
	case "warning":
		name = "warn"
	case "off", "none", "disable":
		name = "disabled"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return logs.InfoLevel, false
	}
	return lvl, true
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
