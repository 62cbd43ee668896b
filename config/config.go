// Package config loads the daemon's TOML configuration file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config is the application configuration, loaded from a TOML file with
// environment-variable overrides for secrets.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Sync     SyncConfig     `toml:"sync"`
	Browser  BrowserConfig  `toml:"browser"`
}

// SpotifyConfig holds the client-credentials pair for the catalog API.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	Secret string `toml:"secret"`
}

// SyncConfig holds pipeline tunables.
type SyncConfig struct {
	DefaultPlaylistID    string `toml:"default_playlist_id"`
	ArtistChunkSize      int    `toml:"artist_chunk_size"`
	RetryCooldownSeconds int    `toml:"retry_cooldown_seconds"`
}

// BrowserConfig holds headless-session tunables.
type BrowserConfig struct {
	NavTimeoutSeconds int `toml:"nav_timeout_seconds"`
}

// Load reads the TOML file at path, falling back to embedded defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Default returns a Config parsed from the embedded example file.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return &cfg
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SYNC_SECRET"); v != "" {
		cfg.Server.Secret = v
	}
}

// ArtistChunkSize returns the configured chunk width, defaulting to 5.
func (cfg *Config) ArtistChunkSize() int {
	if cfg.Sync.ArtistChunkSize <= 0 {
		return 5
	}
	return cfg.Sync.ArtistChunkSize
}

// RetryCooldown returns the configured cooldown before the single artist
// retry pass, defaulting to 3 seconds.
func (cfg *Config) RetryCooldown() time.Duration {
	if cfg.Sync.RetryCooldownSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(cfg.Sync.RetryCooldownSeconds) * time.Second
}

// NavTimeout returns the per-navigation timeout for headless scrapes,
// defaulting to 20 seconds.
func (cfg *Config) NavTimeout() time.Duration {
	if cfg.Browser.NavTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(cfg.Browser.NavTimeoutSeconds) * time.Second
}
