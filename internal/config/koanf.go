package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first hit wins.
var DefaultConfigPaths = []string{
	"origami.yaml",
	"origami.yml",
	"/etc/origami/config.yaml",
	"/etc/origami/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "ORIGAMI_CONFIG"

// envPrefix marks variables that belong to us; everything else is ignored.
const envPrefix = "ORIGAMI_"

// Load layers defaults, an optional YAML file and ORIGAMI_* environment
// variables into a validated Config.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings pins each recognized variable to its koanf path. Unmapped
// ORIGAMI_* variables are dropped rather than guessed at.
var envMappings = map[string]string{
	"cache_root":              "cache.root",
	"cache_backend":           "cache.backend",
	"model_max_lag":           "model.max_lag",
	"model_skip_output_check": "model.skip_output_check",
	"model_time_column":       "model.time_column",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
}

func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
