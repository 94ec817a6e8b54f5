package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	DataFile     string  `toml:"data_file"`
	MappingFile  string  `toml:"mapping_file"`
	Downsample   int     `toml:"downsample"`
	SourceRateHz float64 `toml:"source_rate_hz"`
	Speed        float64 `toml:"speed"`
	JoinTimeout  string  `toml:"join_timeout"`
	Listen       string  `toml:"listen"`
	WatchMapping *bool   `toml:"watch_mapping"`
	Autoplay     *bool   `toml:"autoplay"`
	LogLevel     string  `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.jointreplay/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".jointreplay", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data", fc.DataFile, &cfg.DataFile)
	s.setString("mapping", fc.MappingFile, &cfg.MappingFile)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("downsample", fc.Downsample, &cfg.Downsample)
	s.setFloat("source-rate", fc.SourceRateHz, &cfg.SourceRateHz)
	s.setFloat("speed", fc.Speed, &cfg.Speed)

	if err := s.setDuration("join-timeout", fc.JoinTimeout, &cfg.JoinTimeout); err != nil {
		return err
	}

	s.setBool("watch-mapping", fc.WatchMapping, &cfg.WatchMapping)
	s.setBool("autoplay", fc.Autoplay, &cfg.Autoplay)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
