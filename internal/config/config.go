// Package config loads orbitflow settings.
//
// Precedence, highest first:
//  1. Environment variables (ORBITFLOW_SERVER_PORT -> server.port)
//  2. The YAML config file (~/.config/orbitflow/config.yaml)
//  3. Built-in defaults
package config

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
)

const maxConfigFileSize = 1024 * 1024

//go:embed default.yaml
var defaultYAML []byte

// Duration wraps time.Duration for text unmarshaling from YAML and env vars.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Timezone string         `koanf:"timezone"`
	Server   ServerConfig   `koanf:"server"`
	Cache    CacheConfig    `koanf:"cache"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig names the store: a SQLite file path or a PostgreSQL URL.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type ServerConfig struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	TokenTTL Duration `koanf:"token_ttl"`
	Issuer   string   `koanf:"issuer"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig selects the snapshot cache. An empty RedisAddr keeps the
// cache in process.
type CacheConfig struct {
	RedisAddr string   `koanf:"redis_addr"`
	TTL       Duration `koanf:"ttl"`
	Prefix    string   `koanf:"prefix"`
}

type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// Load reads the defaults, then path (if it exists), then ORBITFLOW_*
// environment variables. An empty path means DefaultPath().
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(constants.EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.URL, err = ExpandHome(cfg.Database.URL); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ORBITFLOW_SECTION_FIELD_NAME to section.field_name.
// Only the first underscore after the prefix separates section and field.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, constants.EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.InvalidInputf("database.url is empty")
	}
	if _, err := calendar.LoadLocation(c.Timezone); err != nil {
		return errors.InvalidInputf("invalid timezone %q: %v", c.Timezone, err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.InvalidInputf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.TokenTTL.Duration() <= 0 {
		return errors.InvalidInputf("server.token_ttl must be positive")
	}
	return nil
}

// DefaultPath returns ~/.config/orbitflow/config.yaml.
func DefaultPath() (string, error) {
	return ExpandHome(constants.DefaultConfigFile)
}

// Dir returns the directory holding the config file, logs and the default
// SQLite database.
func Dir() (string, error) {
	return ExpandHome(constants.DefaultConfigDir)
}

// ExpandHome replaces a leading ~ with the user's home directory.
// Connection URLs are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
