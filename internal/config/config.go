// Package config loads optional defaults for paraget from a YAML file.
// Command-line flags that are explicitly set always take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tanq16/paraget/internal/utils"
)

type Config struct {
	Parts            int               `yaml:"parts"`
	Connections      int               `yaml:"connections"`
	Timeout          time.Duration     `yaml:"timeout"`
	KeepAliveTimeout time.Duration     `yaml:"keep_alive_timeout"`
	UserAgent        string            `yaml:"user_agent"`
	Proxy            string            `yaml:"proxy"`
	ProxyUsername    string            `yaml:"proxy_username"`
	ProxyPassword    string            `yaml:"proxy_password"`
	Headers          map[string]string `yaml:"headers"`
	NoProgress       bool              `yaml:"no_progress"`
}

func Default() Config {
	return Config{
		Parts:            utils.DefaultParts,
		Connections:      0,
		Timeout:          3 * time.Minute,
		KeepAliveTimeout: 90 * time.Second,
		UserAgent:        utils.ToolUserAgent,
		Headers:          map[string]string{},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/paraget/config.yaml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "paraget", "config.yaml")
}

// Load reads path over the defaults. A missing file is only an error when
// required is true.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Parts <= 0 {
		return fmt.Errorf("parts must be at least 1, got %d", c.Parts)
	}
	if c.Connections < 0 || c.Connections > utils.MaxConnections {
		return fmt.Errorf("connections must be between 0 and %d, got %d", utils.MaxConnections, c.Connections)
	}
	if c.Timeout < 0 || c.KeepAliveTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	return nil
}
