package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Retention: RetentionConfig{
			Days:               30,
			PruneIntervalHours: 24,
		},
		Tracking: TrackingConfig{
			MinSessionMs:    1000,
			SignificantMs:   5000,
			IdleThresholdMs: 60000,
			IdleCheckMs:     5000,
		},
		Storage: StorageConfig{
			Path:       "~/.config/protrackr",
			SQLiteFile: "protrackr.db",
		},
		Daemon: DaemonConfig{
			Host:      "127.0.0.1",
			Port:      8726,
			AuthToken: "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
