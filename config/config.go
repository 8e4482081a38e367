// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads the tool configuration from an optional YAML file
// with POREACH_* environment overrides on top.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	vfs "github.com/twpayne/go-vfs"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/provider"
)

// Config holds the tool configuration.
type Config struct {
	LocaleRoot string `yaml:"localeRoot"`
	Lang       string `yaml:"lang"`
	Domain     string `yaml:"domain"`

	SourceExts       []string `yaml:"sourceExts"`
	TemplateSuffixes []string `yaml:"templateSuffixes"`

	Provider struct {
		Model             string `yaml:"model"`
		BatchSize         int    `yaml:"batchSize"`
		RequestsPerMinute int    `yaml:"requestsPerMinute"`
	} `yaml:"provider"`

	Log struct {
		Level string `yaml:"logLevel"`
	} `yaml:"log"`
}

// Load reads the configuration in precedence order: YAML file when it
// exists, then environment variables, then defaults for whatever is still
// unset. An empty path skips the file entirely.
func Load(fsys vfs.FS, path string) (*Config, error) {
	cfg := &Config{}

	if err := cfg.readYAML(fsys, path); err != nil {
		return nil, err
	}

	cfg.readEnv()
	cfg.SetDefaults()

	return cfg, nil
}

func (cfg *Config) readYAML(fsys vfs.FS, path string) error {
	if path == "" {
		return nil
	}

	data, err := fsys.ReadFile(path)
	if os.IsNotExist(err) {
		log.Info().
			Str("path", path).
			Msg("No YAML configuration file found, skipping")

		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Msg("Successfully loaded configuration")

	return nil
}

// readEnv applies POREACH_* overrides on top of whatever the file set.
func (cfg *Config) readEnv() {
	overrides := []struct {
		name  string
		field *string
	}{
		{"POREACH_LOCALE_ROOT", &cfg.LocaleRoot},
		{"POREACH_LANG", &cfg.Lang},
		{"POREACH_DOMAIN", &cfg.Domain},
		{"POREACH_GEMINI_MODEL", &cfg.Provider.Model},
		{"POREACH_LOG_LEVEL", &cfg.Log.Level},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			*o.field = v
		}
	}
}

// SetDefaults fills every field that is still at its zero value.
func (cfg *Config) SetDefaults() {
	if cfg.Lang == "" {
		cfg.Lang = "bn"
	}

	if cfg.Domain == "" {
		cfg.Domain = catalog.DefaultDomain
	}

	if len(cfg.SourceExts) == 0 {
		cfg.SourceExts = []string{".py"}
	}

	if len(cfg.TemplateSuffixes) == 0 {
		cfg.TemplateSuffixes = []string{".html"}
	}

	if cfg.Provider.Model == "" {
		cfg.Provider.Model = provider.DefaultModel
	}

	if cfg.Provider.BatchSize <= 0 {
		cfg.Provider.BatchSize = provider.DefaultBatchSize
	}

	if cfg.Provider.RequestsPerMinute <= 0 {
		cfg.Provider.RequestsPerMinute = provider.DefaultRequestsPerMinute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
