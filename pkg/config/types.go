// Package config provides data models, loading, and validation for the
// target provider host's static configuration.
//
// This configuration is host-only: it tells the host which provider shared
// libraries to preload at startup, what hash to verify them against, and
// where to find each provider's opaque JSON configuration. It is distinct
// from the per-provider ProviderConfig carried over the plugin ABI, which
// never touches this YAML file.
package config

// Config is the root configuration structure loaded from a YAML file on disk.
type Config struct {
	// Host contains host-level settings (metrics port, logging).
	Host HostConfig `yaml:"host"`

	// Providers lists the provider shared libraries to preload at startup,
	// keyed by a caller-chosen name used for logging and metrics labels.
	Providers map[string]ProviderEntry `yaml:"providers"`
}

// HostConfig contains host process-level configuration.
type HostConfig struct {
	// LogLevel controls log verbosity: ERROR, WARNING, INFO, or DEBUG.
	// Default: INFO
	LogLevel string `yaml:"log_level"`

	// MetricsPort is the port the Prometheus metrics endpoint listens on.
	// Default: 9090
	MetricsPort int `yaml:"metrics_port"`
}

// ProviderEntry describes one provider shared library the host should be
// able to load on demand.
type ProviderEntry struct {
	// Path is the absolute filesystem path to the provider shared library.
	Path string `yaml:"path"`

	// ExpectedHash is the hex-encoded SHA-256 of the library file, or the
	// literal string "any" to disable hash verification.
	ExpectedHash string `yaml:"expected_hash"`

	// ConfigFile is an optional path to a JSON file whose contents are
	// passed verbatim as the provider's ProviderConfig. If empty, "{}" is
	// used.
	ConfigFile string `yaml:"config_file,omitempty"`
}
