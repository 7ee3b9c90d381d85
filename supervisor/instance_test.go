package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func TestResolveEmptyHandleIsDefault(t *testing.T) {
	s, err := Resolve("")
	require.NoError(t, err)
	assert.Same(t, Default(), s)
}

func TestResolveUnknownHandleIsConfigurationError(t *testing.T) {
	_, err := Resolve("does-not-exist")
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.Configuration, exc.Kind)
}

func TestRegisterAndResolveInstance(t *testing.T) {
	s := RegisterInstance("worker-pool-a")
	defer UnregisterInstance("worker-pool-a")

	resolved, err := Resolve("worker-pool-a")
	require.NoError(t, err)
	assert.Same(t, s, resolved)
}
