// Package config loads and saves the global ~/.selah/config.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global client configuration.
type Config struct {
	DefaultProfile string       `toml:"default_profile"`
	API            API          `toml:"api"`
	Download       Download     `toml:"download"`
	Connectivity   Connectivity `toml:"connectivity"`
}

// API configures the remote backend endpoints.
type API struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Download configures the offline corpus downloader.
type Download struct {
	Translation    string `toml:"translation"`
	RequestDelayMS int    `toml:"request_delay_ms"`
	Precache       bool   `toml:"precache"`
}

// Connectivity configures the reachability probe.
type Connectivity struct {
	ProbeIntervalSeconds int `toml:"probe_interval_seconds"`
}

// Default returns the configuration used when no config.toml exists yet.
func Default() *Config {
	return &Config{
		DefaultProfile: "default",
		API: API{
			BaseURL:        "https://api.selah.app/v1",
			TimeoutSeconds: 15,
		},
		Download: Download{
			Translation:    "kjv",
			RequestDelayMS: 150,
		},
		Connectivity: Connectivity{
			ProbeIntervalSeconds: 15,
		},
	}
}

// Load reads config from the given path, filling unset fields from Default.
// Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
