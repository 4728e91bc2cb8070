// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Refresher RefresherConfig `yaml:"refresher"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

type StorageConfig struct {
	Type      string        `yaml:"type"` // "file", "sqlite" or "memory"
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"`
}

type RefresherConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used for every field a file leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Type:      StorageFile,
			Path:      "tasks.json",
			Retention: 7 * 24 * time.Hour,
		},
		Refresher: RefresherConfig{
			Interval: time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// Load reads path. A missing file is not an error: the defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", c.Storage.Type)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	if c.Storage.Retention < 0 {
		return errors.New("storage.retention must not be negative")
	}
	if c.Refresher.Interval <= 0 {
		return errors.New("refresher.interval must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid server.port %q", c.Server.Port)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
