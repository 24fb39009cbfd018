package uprotocol

import (
	"encoding/json"
	"fmt"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
)

const (
	defaultGetMethodTimeoutMillis   = 120000
	defaultApplyMethodTimeoutMillis = 300000
)

// rawConfig mirrors the provider's JSON configuration exactly as it
// arrives over the ABI boundary.
type rawConfig struct {
	LocalEntity             string                `json:"localEntity"`
	GetMethodURI            string                `json:"getMethodUri"`
	GetMethodTimeoutMillis  *uint32               `json:"getMethodTimeoutMillis,omitempty"`
	ApplyMethodTimeoutMillis *uint32              `json:"applyMethodTimeoutMillis,omitempty"`
	ZenohConfig             string                `json:"zenohConfig,omitempty"`
	BrokerAddress           string                `json:"brokerAddress,omitempty"`
	ClientID                string                `json:"clientID,omitempty"`
	ValidationRule          *model.ValidationRule `json:"validationRule,omitempty"`
}

// transportKind distinguishes the three pluggable transports a config
// may select.
type transportKind int

const (
	transportInProcess transportKind = iota
	transportMQTT5
	transportZenoh
)

// config is the parsed, validated configuration driving one Provider.
type config struct {
	LocalEntity              uri
	GetMethodURI             uri
	UpdateMethodURI          uri
	DeleteMethodURI          uri
	GetMethodTimeoutMillis   uint32
	ApplyMethodTimeoutMillis uint32
	Transport                transportKind
	ZenohConfig              string
	BrokerAddress            string
	ClientID                 string
	ValidationRule           model.ValidationRule
}

// parseConfig parses and validates a provider's opaque JSON
// configuration, deriving the UPDATE/DELETE method URIs and resolving
// which transport to construct.
func parseConfig(configJSON []byte) (config, error) {
	var raw rawConfig
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &raw); err != nil {
			return config{}, fmt.Errorf("uprotocol: invalid config: %w", err)
		}
	}

	if raw.LocalEntity == "" {
		return config{}, fmt.Errorf("uprotocol: localEntity is required")
	}
	localEntity, err := parseURI(raw.LocalEntity)
	if err != nil {
		return config{}, err
	}
	if localEntity.ResourceID != resourceIDResponse {
		return config{}, fmt.Errorf("uprotocol: localEntity must have resource id 0x0000, got 0x%04X", localEntity.ResourceID)
	}

	if raw.GetMethodURI == "" {
		return config{}, fmt.Errorf("uprotocol: getMethodUri is required")
	}
	getURI, err := parseURI(raw.GetMethodURI)
	if err != nil {
		return config{}, err
	}
	if getURI.ResourceID != resourceIDGet {
		return config{}, fmt.Errorf("uprotocol: getMethodUri must have resource id 0x0001, got 0x%04X", getURI.ResourceID)
	}

	transportSel, err := selectTransport(raw.ZenohConfig, raw.BrokerAddress)
	if err != nil {
		return config{}, err
	}

	rule := model.DefaultValidationRule()
	if raw.ValidationRule != nil {
		if err := raw.ValidationRule.Validate(); err != nil {
			return config{}, fmt.Errorf("uprotocol: invalid validationRule: %w", err)
		}
		rule = *raw.ValidationRule
	}

	cfg := config{
		LocalEntity:              localEntity,
		GetMethodURI:             getURI,
		UpdateMethodURI:          getURI.withResourceID(resourceIDUpdate),
		DeleteMethodURI:          getURI.withResourceID(resourceIDDelete),
		GetMethodTimeoutMillis:   defaultGetMethodTimeoutMillis,
		ApplyMethodTimeoutMillis: defaultApplyMethodTimeoutMillis,
		Transport:                transportSel,
		ZenohConfig:              raw.ZenohConfig,
		BrokerAddress:            raw.BrokerAddress,
		ClientID:                 raw.ClientID,
		ValidationRule:           rule,
	}
	if raw.GetMethodTimeoutMillis != nil {
		cfg.GetMethodTimeoutMillis = *raw.GetMethodTimeoutMillis
	}
	if raw.ApplyMethodTimeoutMillis != nil {
		cfg.ApplyMethodTimeoutMillis = *raw.ApplyMethodTimeoutMillis
	}

	return cfg, nil
}

// selectTransport implements the zenohConfig/brokerAddress truth table:
// exactly one set picks that transport, neither set falls back to the
// in-process loopback, and both set is a construction failure.
func selectTransport(zenohConfig, brokerAddress string) (transportKind, error) {
	switch {
	case zenohConfig != "" && brokerAddress != "":
		return 0, fmt.Errorf("uprotocol: zenohConfig and brokerAddress are mutually exclusive")
	case zenohConfig != "":
		return transportZenoh, nil
	case brokerAddress != "":
		return transportMQTT5, nil
	default:
		return transportInProcess, nil
	}
}
