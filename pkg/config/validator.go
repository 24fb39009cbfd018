package config

import "fmt"

// ValidateStructure performs basic structural validation on the configuration.
// Validates required fields and value ranges. Does not touch the filesystem —
// a provider path that does not exist fails later, at load time, with a
// HostError from pluginhost rather than here.
func ValidateStructure(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateHostConfig(&cfg.Host); err != nil {
		return fmt.Errorf("host: %w", err)
	}

	for name, entry := range cfg.Providers {
		if err := validateProviderEntry(name, &entry); err != nil {
			return fmt.Errorf("providers.%s: %w", name, err)
		}
	}

	return nil
}

func validateHostConfig(hc *HostConfig) error {
	switch hc.LogLevel {
	case "ERROR", "WARNING", "WARN", "INFO", "DEBUG":
	default:
		return fmt.Errorf("log_level must be one of ERROR, WARNING, INFO, DEBUG, got %q", hc.LogLevel)
	}

	if hc.MetricsPort < 1 || hc.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port must be between 1 and 65535, got %d", hc.MetricsPort)
	}

	return nil
}

func validateProviderEntry(name string, pe *ProviderEntry) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if pe.Path == "" {
		return fmt.Errorf("path is required")
	}
	if pe.ExpectedHash == "" {
		return fmt.Errorf("expected_hash is required (use \"any\" to disable verification)")
	}

	return nil
}
