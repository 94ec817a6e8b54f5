package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the replay configuration.
const (
	DefaultDownsample   = 10
	DefaultSourceRateHz = 500.0
	DefaultSpeed        = 1.0
	DefaultJoinTimeout  = time.Second
	DefaultListen       = "127.0.0.1:8090"
	DefaultLogLevel     = "info"

	MinSpeed = 0.1
	MaxSpeed = 5.0
)

// Config holds CLI configuration for jointreplay.
type Config struct {
	DataFile    string
	MappingFile string

	Downsample   int
	SourceRateHz float64
	Speed        float64
	JoinTimeout  time.Duration

	Listen       string
	WatchMapping bool
	Autoplay     bool
	LogLevel     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Downsample:   DefaultDownsample,
		SourceRateHz: DefaultSourceRateHz,
		Speed:        DefaultSpeed,
		JoinTimeout:  DefaultJoinTimeout,
		Listen:       DefaultListen,
		LogLevel:     DefaultLogLevel,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data file is required")
	}
	if c.Downsample < 1 {
		return fmt.Errorf("downsample must be >= 1, got %d", c.Downsample)
	}
	if c.SourceRateHz <= 0 {
		return fmt.Errorf("source rate must be positive")
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("join timeout must be positive")
	}
	if c.WatchMapping && c.MappingFile == "" {
		return fmt.Errorf("watch-mapping requires a mapping file")
	}

	if c.Speed < MinSpeed {
		c.Speed = MinSpeed
	}
	if c.Speed > MaxSpeed {
		c.Speed = MaxSpeed
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
