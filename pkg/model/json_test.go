package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_UnmarshalValid(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`"Update"`), &a))
	assert.Equal(t, ActionUpdate, a)

	require.NoError(t, json.Unmarshal([]byte(`"Delete"`), &a))
	assert.Equal(t, ActionDelete, a)
}

func TestAction_UnmarshalUnknown(t *testing.T) {
	var a Action
	err := json.Unmarshal([]byte(`"Restart"`), &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestDeploymentStep_MissingComponentsIsEmptySlice(t *testing.T) {
	var step DeploymentStep
	require.NoError(t, json.Unmarshal([]byte(`{"role":"update","isFirst":true}`), &step))
	assert.NotNil(t, step.Components)
	assert.Empty(t, step.Components)
}

func TestDeploymentStep_NullComponentsIsEmptySlice(t *testing.T) {
	var step DeploymentStep
	require.NoError(t, json.Unmarshal([]byte(`{"role":"update","components":null,"isFirst":false}`), &step))
	assert.NotNil(t, step.Components)
	assert.Empty(t, step.Components)
}

func TestDeploymentStep_PreservesComponents(t *testing.T) {
	var step DeploymentStep
	input := `{"role":"update","isFirst":false,"components":[{"action":"Update","component":{"name":"a"}}]}`
	require.NoError(t, json.Unmarshal([]byte(input), &step))
	require.Len(t, step.Components, 1)
	assert.Equal(t, "a", step.Components[0].Component.Name)
	assert.Equal(t, ActionUpdate, step.Components[0].Action)
}

func TestDeploymentStep_RejectsUnknownAction(t *testing.T) {
	var step DeploymentStep
	input := `{"role":"update","isFirst":false,"components":[{"action":"Frobnicate","component":{"name":"a"}}]}`
	err := json.Unmarshal([]byte(input), &step)
	require.Error(t, err)
}
