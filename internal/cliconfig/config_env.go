package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (JOINTREPLAY_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("data", os.Getenv("JOINTREPLAY_DATA_FILE"), &cfg.DataFile)
	s.setString("mapping", os.Getenv("JOINTREPLAY_MAPPING_FILE"), &cfg.MappingFile)
	s.setString("listen", os.Getenv("JOINTREPLAY_LISTEN"), &cfg.Listen)
	s.setString("log-level", os.Getenv("JOINTREPLAY_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("downsample", os.Getenv("JOINTREPLAY_DOWNSAMPLE"), &cfg.Downsample); err != nil {
		return err
	}
	if err := s.setFloatFromString("source-rate", os.Getenv("JOINTREPLAY_SOURCE_RATE_HZ"), &cfg.SourceRateHz); err != nil {
		return err
	}
	if err := s.setFloatFromString("speed", os.Getenv("JOINTREPLAY_SPEED"), &cfg.Speed); err != nil {
		return err
	}
	if err := s.setDuration("join-timeout", os.Getenv("JOINTREPLAY_JOIN_TIMEOUT"), &cfg.JoinTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-mapping", os.Getenv("JOINTREPLAY_WATCH_MAPPING"), &cfg.WatchMapping)
	s.setBoolFromString("autoplay", os.Getenv("JOINTREPLAY_AUTOPLAY"), &cfg.Autoplay)

	return nil
}
