package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config holds the tool's tunables. The refresh tolerance and the SDR
// white-level curve are empirical values measured against one platform;
// they live in config precisely because other driver/OS combinations may
// round differently.
type Config struct {
	// Display and XAuthority override how the X server is reached; hook
	// environments do not always inherit a session environment.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	// RefreshTolerance is the rounding granularity (in Hz) under which two
	// refresh rates count as equal.
	RefreshTolerance float64 `yaml:"refresh_tolerance"`

	// SdrProperty is the output property carrying the SDR white level.
	SdrProperty string `yaml:"sdr_property"`
	// SdrWhiteBase is the raw value at boost level 0.
	SdrWhiteBase int `yaml:"sdr_white_base"`
	// SdrWhiteStep is the raw increment per boost level point.
	SdrWhiteStep int `yaml:"sdr_white_step"`

	// LogFile receives JSON events when file logging is enabled.
	LogFile  string `yaml:"log_file,omitempty"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		RefreshTolerance: 0.01,
		SdrProperty:      "SDR_WHITE_LEVEL",
		SdrWhiteBase:     1000,
		SdrWhiteStep:     50,
		LogLevel:         "info",
	}
}

// Validate checks the config for values that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.RefreshTolerance <= 0 {
		return fmt.Errorf("refresh_tolerance must be positive, got %v", c.RefreshTolerance)
	}
	if c.RefreshTolerance > 1 {
		return fmt.Errorf("refresh_tolerance above 1Hz would conflate distinct modes, got %v", c.RefreshTolerance)
	}
	if strings.TrimSpace(c.SdrProperty) == "" {
		return fmt.Errorf("sdr_property must not be empty")
	}
	if c.SdrWhiteBase < 0 {
		return fmt.Errorf("sdr_white_base must not be negative, got %d", c.SdrWhiteBase)
	}
	if c.SdrWhiteStep <= 0 {
		return fmt.Errorf("sdr_white_step must be positive to keep the boost mapping monotonic, got %d", c.SdrWhiteStep)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level. Call Validate first; unknown
// values fall back to info here.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", s)
	}
}
