// Package config loads tracker settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	CardsPath string `yaml:"cards_path" env:"CARDS"`
	DataDir   string `yaml:"data_dir" env:"DATA_DIR"`

	// Empty paths are resolved under DataDir.
	CaptureDir  string `yaml:"capture_dir" env:"CAPTURE_DIR"`
	SnapshotDir string `yaml:"snapshot_dir" env:"SNAPSHOT_DIR"`
	IndexPath   string `yaml:"index_path" env:"INDEX_PATH"`

	Capture  bool `yaml:"capture" env:"CAPTURE"`
	Snapshot bool `yaml:"snapshot" env:"SNAPSHOT"`
	Index    bool `yaml:"index" env:"INDEX"`

	Listen   string `yaml:"listen" env:"LISTEN"`
	MaxQueue int    `yaml:"observer_max_queue" env:"OBSERVER_MAX_QUEUE"`
	Verbose  bool   `yaml:"verbose" env:"VERBOSE"`
}

const EnvPrefix = "HEARTHY_"

func Defaults() Config {
	return Config{
		DataDir:  "data",
		Capture:  true,
		Snapshot: true,
		Index:    true,
		MaxQueue: 64,
	}
}

// Load reads path (if non-empty) over Defaults, then applies HEARTHY_*
// environment variables, then resolves derived paths.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	c := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if err := env.ParseWithOptions(&c, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	c.resolve()
	return c, c.Validate()
}

func (c *Config) resolve() {
	if c.CaptureDir == "" {
		c.CaptureDir = filepath.Join(c.DataDir, "captures")
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = filepath.Join(c.DataDir, "snapshots")
	}
	if c.IndexPath == "" {
		c.IndexPath = filepath.Join(c.DataDir, "index", "games.sqlite")
	}
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.MaxQueue < 0 {
		return fmt.Errorf("observer_max_queue must be >= 0, got %d", c.MaxQueue)
	}
	return nil
}
