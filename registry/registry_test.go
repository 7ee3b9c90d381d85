package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func newTestAction(name string) action.Action {
	return &action.BaseAction{
		Meta: action.Metadata{Name: name},
		RunFunc: func(ctx context.Context, params action.Params) action.Result {
			return action.Ok(action.Params{"ok": true})
		},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	act := newTestAction("add")
	require.NoError(t, r.Register(act))

	got, ok := r.Lookup("add")
	assert.True(t, ok)
	assert.Equal(t, act, got)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newTestAction("add")))

	err := r.Register(newTestAction("add"))
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.Configuration, exc.Kind)
}

func TestRegisterEmptyNameRejected(t *testing.T) {
	r := New()
	err := r.Register(newTestAction(""))
	require.Error(t, err)
}

func TestUnregister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newTestAction("add")))
	r.Unregister("add")
	_, ok := r.Lookup("add")
	assert.False(t, ok)
}
