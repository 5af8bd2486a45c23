// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only; no code execution is possible.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// Source kinds understood by the provider registry.
const (
	SourceAnime   = "anime"
	SourceMovie   = "movie"
	SourceTenflix = "tenflix"
)

// Sources lists every supported source kind in menu order.
var Sources = []string{SourceAnime, SourceMovie, SourceTenflix}

// Duration is a time.Duration that decodes from strings like "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Source string `toml:"source"` // empty asks for a source at every search
	Player string `toml:"player"`

	APIBase     string `toml:"api_base"`
	TenflixBase string `toml:"tenflix_base"`
	EmbedHost   string `toml:"embed_host"`

	// MirrorCredentials is the "user:pass" pair injected into credentialed mirror URLs.
	MirrorCredentials string   `toml:"mirror_credentials"`
	CredentialHosts   []string `toml:"credential_hosts"`
	IndirectHosts     []string `toml:"indirect_hosts"`
	PrivateMarkers    []string `toml:"private_markers"`
	SizeProbeExclude  []string `toml:"size_probe_exclude"`

	ProbeTimeout      Duration `toml:"probe_timeout"`
	CheckAvailability bool     `toml:"check_availability"`
	Thumbnails        bool     `toml:"thumbnails"`
	Debug             bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:            "mpv",
		APIBase:           "https://animeku.my.id/nontonanime-v77/phalcon/api",
		TenflixBase:       "https://tenflix.org",
		EmbedHost:         "kotakajaib.me",
		CredentialHosts:   []string{"whatbox"},
		IndirectHosts:     []string{"nontonanime"},
		PrivateMarkers:    []string{"priv"},
		SizeProbeExclude:  []string{"nontonanime"},
		ProbeTimeout:      Duration{2 * time.Second},
		CheckAvailability: true,
		Thumbnails:        true,
		Debug:             false,
	}
}

var fs afero.Fs = afero.NewOsFs()

// SetFs swaps the filesystem config files are read from.
func SetFs(f afero.Fs) { fs = f }

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "animeku"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "animeku"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true, "open": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid, open)", c.Player)
	}

	if c.Source != "" && !IsSource(c.Source) {
		return fmt.Errorf("unsupported source %q (valid: %s)", c.Source, strings.Join(Sources, ", "))
	}

	for name, base := range map[string]string{"api_base": c.APIBase, "tenflix_base": c.TenflixBase} {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, base)
		}
	}

	if c.MirrorCredentials != "" && !strings.Contains(c.MirrorCredentials, ":") {
		return fmt.Errorf("mirror_credentials must have the form user:pass")
	}

	if c.ProbeTimeout.Duration <= 0 {
		return fmt.Errorf("probe_timeout must be positive")
	}

	return nil
}

// IsSource reports whether name is a known source kind.
func IsSource(name string) bool {
	for _, s := range Sources {
		if s == name {
			return true
		}
	}
	return false
}
