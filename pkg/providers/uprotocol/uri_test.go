package uprotocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	u, err := parseURI("//symphony/1DA/2/0")
	require.NoError(t, err)
	assert.Equal(t, "symphony", u.Authority)
	assert.Equal(t, "1DA", u.EntityID)
	assert.Equal(t, "2", u.MajorVersion)
	assert.Equal(t, resourceIDResponse, u.ResourceID)
}

func TestParseURI_InvalidMissingSlashes(t *testing.T) {
	_, err := parseURI("symphony/1DA/2/0")
	assert.Error(t, err)
}

func TestParseURI_InvalidTooFewSegments(t *testing.T) {
	_, err := parseURI("//symphony/1DA/2")
	assert.Error(t, err)
}

func TestParseURI_InvalidResourceID(t *testing.T) {
	_, err := parseURI("//symphony/1DA/2/zz")
	assert.Error(t, err)
}

func TestWithResourceID_PreservesAuthorityEntityVersion(t *testing.T) {
	get, err := parseURI("//updater/BBC/1/1")
	require.NoError(t, err)

	update := get.withResourceID(resourceIDUpdate)
	assert.Equal(t, "//updater/BBC/1/2", update.String())

	del := get.withResourceID(resourceIDDelete)
	assert.Equal(t, "//updater/BBC/1/3", del.String())
}

func TestURI_RoundTrip(t *testing.T) {
	u, err := parseURI("//updater/BBC/1/1")
	require.NoError(t, err)
	assert.Equal(t, "//updater/BBC/1/1", u.String())
}
