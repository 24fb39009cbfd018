package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentSpec_CloneIsIndependent(t *testing.T) {
	original := ComponentSpec{
		Name:       "comp-a",
		Metadata:   map[string]string{"k": "v"},
		Properties: map[string]any{"p": 1},
		Routes:     []RouteSpec{{Route: "/a"}},
	}

	clone := original.Clone()
	clone.Metadata["k"] = "changed"
	clone.Properties["p"] = 2
	clone.Routes[0].Route = "/b"

	assert.Equal(t, "v", original.Metadata["k"])
	assert.Equal(t, 1, original.Properties["p"])
	assert.Equal(t, "/a", original.Routes[0].Route)
}

func TestDefaultValidationRule_AcceptsAnything(t *testing.T) {
	rule := DefaultValidationRule()

	assert.False(t, rule.AllowSidecar)
	assert.Len(t, rule.ComponentValidationRule.ChangeDetectionProperties, 1)
	assert.Equal(t, "*", rule.ComponentValidationRule.ChangeDetectionProperties[0].Name)
	assert.NoError(t, rule.Validate())
}

func TestDefaultPropertyDesc(t *testing.T) {
	d := DefaultPropertyDesc()
	assert.Equal(t, "*", d.Name)
	assert.True(t, d.IgnoreCase)
	assert.True(t, d.SkipIfMissing)
	assert.False(t, d.PrefixMatch)
}
