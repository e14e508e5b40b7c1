// Package config resolves runtime settings from an optional .env file and
// the process environment. Flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvTimeout   = "PERIPHERY_AUDIT_TIMEOUT"
	EnvKillGrace = "PERIPHERY_AUDIT_KILL_GRACE"
	EnvLogLevel  = "PERIPHERY_AUDIT_LOG_LEVEL"
	EnvLogFormat = "PERIPHERY_AUDIT_LOG_FORMAT"
)

const (
	defaultTimeout   = 300 * time.Second
	defaultKillGrace = 2 * time.Second
)

// Config holds resolved settings. Sources record where each duration came
// from: "env" or "default".
type Config struct {
	Timeout         time.Duration
	TimeoutSource   string
	KillGrace       time.Duration
	KillGraceSource string
	LogLevel        string
	LogFormat       string
}

// Load reads .env from the working directory when present, then the
// environment. A missing .env is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv resolves settings through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Timeout:         defaultTimeout,
		TimeoutSource:   "default",
		KillGrace:       defaultKillGrace,
		KillGraceSource: "default",
		LogLevel:        firstNonEmpty(strings.ToLower(strings.TrimSpace(getenv(EnvLogLevel))), "info"),
		LogFormat:       firstNonEmpty(strings.ToLower(strings.TrimSpace(getenv(EnvLogFormat))), "console"),
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := ParseDurationFlexible(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout, cfg.TimeoutSource = d, "env"
	}
	if v := strings.TrimSpace(getenv(EnvKillGrace)); v != "" {
		d, err := ParseDurationFlexible(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvKillGrace, err)
		}
		cfg.KillGrace, cfg.KillGraceSource = d, "env"
	}
	switch cfg.LogLevel {
	case "info", "debug":
	default:
		return Config{}, fmt.Errorf("%s: unsupported level %q (want info or debug)", EnvLogLevel, cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("%s: unsupported format %q (want console or json)", EnvLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// ParseDurationFlexible accepts Go duration strings ("500ms", "2m") or plain
// integers meaning seconds ("30"). Zero and negative values are rejected.
func ParseDurationFlexible(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", s)
		}
		return d, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration seconds must be positive: %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration: %q", s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
