package ankaios

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-symphony/target-provider-go/pkg/model"
)

// fakeClient is an in-memory Client double for provider tests.
type fakeClient struct {
	state          State
	applyErr       error
	deleteErr      error
	appliedNames   []string
	appliedWorkload Workload
	deletedNames   []string
}

func (f *fakeClient) GetState(_ context.Context, _ []string) (State, error) {
	return f.state, nil
}

func (f *fakeClient) ApplyWorkload(_ context.Context, name string, w Workload) error {
	f.appliedNames = append(f.appliedNames, name)
	f.appliedWorkload = w
	return f.applyErr
}

func (f *fakeClient) DeleteWorkload(_ context.Context, name string) error {
	f.deletedNames = append(f.deletedNames, name)
	return f.deleteErr
}

func (f *fakeClient) Close() error { return nil }

func TestGetValidationRule_ReturnsDefault(t *testing.T) {
	p := NewWithClient(&fakeClient{})
	rule, err := p.GetValidationRule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultValidationRule(), rule)
}

func TestGet_EnrichesMatchedAndOmitsUnmatched(t *testing.T) {
	client := &fakeClient{state: State{Workloads: map[string]Workload{
		"web": {Agent: "agent_B", Runtime: "podman", RestartPolicy: "ALWAYS", RuntimeConfig: "cfg"},
	}}}
	p := NewWithClient(client)

	refs := []model.ComponentStep{
		{Component: model.ComponentSpec{Name: "web"}},
		{Component: model.ComponentSpec{Name: "unmanaged"}},
	}
	got, err := p.Get(context.Background(), model.DeploymentSpec{}, refs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "web", got[0].Name)
	assert.Equal(t, "agent_B", got[0].Properties["ankaios.agent"])
	assert.Equal(t, "podman", got[0].Properties["ankaios.runtime"])
	assert.Equal(t, "ALWAYS", got[0].Properties["ankaios.restartPolicy"])
	assert.Equal(t, "cfg", got[0].Properties["ankaios.runtimeConfig"])
}

func TestApply_DryRunEmptyMap(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionUpdate, Component: model.ComponentSpec{Name: "web"}},
	}}
	result, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, true)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, client.appliedNames)
}

func TestApply_UpdateUsesDefaultsWhenPropertiesMissing(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionUpdate, Component: model.ComponentSpec{Name: "web"}},
	}}
	result, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, false)
	require.NoError(t, err)

	assert.Equal(t, model.StateOK, result["web"].Status)
	assert.Equal(t, "agent_A", client.appliedWorkload.Agent)
	assert.Equal(t, "podman", client.appliedWorkload.Runtime)
	assert.Equal(t, "NEVER", client.appliedWorkload.RestartPolicy)
	assert.Equal(t, "", client.appliedWorkload.RuntimeConfig)
}

func TestApply_UpdateHonorsOverrideProperties(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionUpdate, Component: model.ComponentSpec{Name: "web", Properties: map[string]any{
			"ankaios.agent":   "agent_B",
			"ankaios.runtime": "podman",
		}}},
	}}
	_, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, false)
	require.NoError(t, err)
	assert.Equal(t, "agent_B", client.appliedWorkload.Agent)
}

func TestApply_DeleteSuccess(t *testing.T) {
	client := &fakeClient{}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionDelete, Component: model.ComponentSpec{Name: "web"}},
	}}
	result, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, false)
	require.NoError(t, err)
	assert.Equal(t, model.StateOK, result["web"].Status)
	assert.Equal(t, []string{"web"}, client.deletedNames)
}

func TestApply_DeleteFailureReturnsInternalError(t *testing.T) {
	client := &fakeClient{deleteErr: errors.New("boom")}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionDelete, Component: model.ComponentSpec{Name: "web"}},
	}}
	result, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, false)
	require.NoError(t, err)
	assert.Equal(t, model.StateInternalError, result["web"].Status)
	assert.Contains(t, result["web"].Message, "boom")
}

func TestApply_EveryComponentProducesExactlyOneResult(t *testing.T) {
	client := &fakeClient{applyErr: errors.New("nope")}
	p := NewWithClient(client)

	step := model.DeploymentStep{Components: []model.ComponentStep{
		{Action: model.ActionUpdate, Component: model.ComponentSpec{Name: "a"}},
		{Action: model.ActionDelete, Component: model.ComponentSpec{Name: "b"}},
	}}
	result, err := p.Apply(context.Background(), model.DeploymentSpec{}, step, false)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}
