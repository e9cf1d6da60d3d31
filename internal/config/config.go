package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Gif      GifConfig    `yaml:"gif"`
	LogLevel string       `yaml:"log_level"`
	Sound    *bool        `yaml:"sound"`
}

type ServerConfig struct {
	URL               string        `yaml:"url"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
}

type GifConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "clack")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("config %s: server.url is required", path)
	}
	if cfg.Server.ReconnectDelay <= 0 {
		cfg.Server.ReconnectDelay = 2 * time.Second
	}
	if cfg.Server.ReconnectAttempts <= 0 {
		cfg.Server.ReconnectAttempts = 5
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return &cfg, nil
}

// SoundEnabled defaults to true when the key is absent from the file.
func (c *Config) SoundEnabled() bool {
	return c.Sound == nil || *c.Sound
}
