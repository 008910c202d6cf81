// Package config loads the snhsdiag configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/snhsdiag/config.toml
// (~/.config/snhsdiag/config.toml). Every key is optional; a missing file at
// the default location yields [Default].
//
//	output_dir = "out"
//	format     = "png"
//	engine     = "exec"
//	dot_path   = "/usr/local/bin/dot"
//	cleanup    = true
//
//	[cache]
//	backend = "redis"
//	ttl     = "72h"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/snhsdiag/pkg/errors"
)

// AppName is used for config and cache directory names.
const AppName = "snhsdiag"

// Config is the decoded configuration file.
type Config struct {
	// OutputDir is where rendered files are written. Empty means the
	// working directory.
	OutputDir string `toml:"output_dir"`

	// Format overrides each diagram's own output format when set.
	Format string `toml:"format"`

	// Engine is "graphviz" (in-process) or "exec" (external dot).
	Engine string `toml:"engine"`

	// DotPath is the dot executable for the exec engine.
	DotPath string `toml:"dot_path"`

	// Cleanup removes the intermediate DOT source after rendering.
	Cleanup bool `toml:"cleanup"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	KeyPrefix string   `toml:"key_prefix"`

	RedisURL string `toml:"redis_url"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures `snhsdiag serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration that decodes from strings such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Engine:  "graphviz",
		DotPath: "dot",
		Cleanup: true,
		Cache: CacheConfig{
			Backend:         "file",
			TTL:             Duration{7 * 24 * time.Hour},
			KeyPrefix:       AppName + ":",
			MongoDatabase:   AppName,
			MongoCollection: "artifacts",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{2 * time.Minute},
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// DefaultPath returns the XDG config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the XDG cache directory (~/.cache/snhsdiag).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path on top of Default. An empty path loads
// DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "read config %s", path)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of Default. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
