package uprotocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfigJSON(extra string) []byte {
	body := `{"localEntity":"//symphony/1DA/2/0","getMethodUri":"//updater/BBC/1/1"` + extra + `}`
	return []byte(body)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(baseConfigJSON(""))
	require.NoError(t, err)
	assert.Equal(t, uint32(defaultGetMethodTimeoutMillis), cfg.GetMethodTimeoutMillis)
	assert.Equal(t, uint32(defaultApplyMethodTimeoutMillis), cfg.ApplyMethodTimeoutMillis)
	assert.Equal(t, transportInProcess, cfg.Transport)
	assert.Equal(t, "//updater/BBC/1/2", cfg.UpdateMethodURI.String())
	assert.Equal(t, "//updater/BBC/1/3", cfg.DeleteMethodURI.String())
}

func TestParseConfig_MissingLocalEntity(t *testing.T) {
	_, err := parseConfig([]byte(`{"getMethodUri":"//updater/BBC/1/1"}`))
	assert.Error(t, err)
}

func TestParseConfig_MissingGetMethodURI(t *testing.T) {
	_, err := parseConfig([]byte(`{"localEntity":"//symphony/1DA/2/0"}`))
	assert.Error(t, err)
}

func TestParseConfig_LocalEntityWrongResourceID(t *testing.T) {
	_, err := parseConfig([]byte(`{"localEntity":"//symphony/1DA/2/1","getMethodUri":"//updater/BBC/1/1"}`))
	assert.Error(t, err)
}

func TestParseConfig_GetURIWrongResourceID(t *testing.T) {
	_, err := parseConfig([]byte(`{"localEntity":"//symphony/1DA/2/0","getMethodUri":"//updater/BBC/1/2"}`))
	assert.Error(t, err)
}

func TestParseConfig_BothTransportsConfiguredFails(t *testing.T) {
	_, err := parseConfig(baseConfigJSON(`,"zenohConfig":"/etc/zenoh.json","brokerAddress":"tcp://broker:1883"`))
	assert.Error(t, err)
}

func TestParseConfig_ZenohSelected(t *testing.T) {
	cfg, err := parseConfig(baseConfigJSON(`,"zenohConfig":"/etc/zenoh.json"`))
	require.NoError(t, err)
	assert.Equal(t, transportZenoh, cfg.Transport)
}

func TestParseConfig_MQTT5Selected(t *testing.T) {
	cfg, err := parseConfig(baseConfigJSON(`,"brokerAddress":"tcp://broker:1883"`))
	require.NoError(t, err)
	assert.Equal(t, transportMQTT5, cfg.Transport)
}

func TestParseConfig_CustomTimeouts(t *testing.T) {
	cfg, err := parseConfig(baseConfigJSON(`,"getMethodTimeoutMillis":5000,"applyMethodTimeoutMillis":9000`))
	require.NoError(t, err)
	assert.Equal(t, uint32(5000), cfg.GetMethodTimeoutMillis)
	assert.Equal(t, uint32(9000), cfg.ApplyMethodTimeoutMillis)
}

func TestParseConfig_InvalidValidationRule(t *testing.T) {
	_, err := parseConfig(baseConfigJSON(`,"validationRule":{"componentValidationRule":{"requiredProperties":["x"],"optionalProperties":["x"]}}`))
	assert.Error(t, err)
}
