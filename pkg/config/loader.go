package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a host configuration file from path, applies defaults, and
// validates the result.
//
// Example:
//
//	cfg, err := config.Load("/etc/symphony/host.yaml")
//	if err != nil {
//	    return err
//	}
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := ParseConfig(string(data))
	if err != nil {
		return nil, err
	}

	SetDefaults(cfg)

	if err := ValidateStructure(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseConfig parses YAML configuration into a Config struct.
// This is a pure function that only parses YAML — it does not apply
// defaults or validate. Most callers should use Load instead; this is
// primarily useful for testing parse behavior independently.
func ParseConfig(configYAML string) (*Config, error) {
	if configYAML == "" {
		return nil, fmt.Errorf("config YAML is empty")
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(configYAML), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &cfg, nil
}
