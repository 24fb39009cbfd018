package config

// Default values for configuration fields.
const (
	// DefaultLogLevel is the default host log level.
	DefaultLogLevel = "INFO"

	// DefaultMetricsPort is the default port for Prometheus metrics.
	DefaultMetricsPort = 9090

	// DefaultProviderConfigJSON is the ProviderConfig passed to a provider
	// whose entry does not set config_file.
	DefaultProviderConfigJSON = "{}"
)

// SetDefaults applies default values to unset configuration fields.
// This modifies the config in-place and should be called after parsing
// the configuration and before validation.
func SetDefaults(cfg *Config) {
	if cfg.Host.LogLevel == "" {
		cfg.Host.LogLevel = DefaultLogLevel
	}
	if cfg.Host.MetricsPort == 0 {
		cfg.Host.MetricsPort = DefaultMetricsPort
	}
}
