package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func TestFlatSchemaValidatesDeclaredFields(t *testing.T) {
	s := NewFlatSchema(map[string]Field{
		"amount": {Rules: "gt=0", Required: true},
	})

	out, err := s.Validate(action.Params{"amount": 5, "note": "extra"})
	require.NoError(t, err)
	assert.Equal(t, 5, out["amount"])
	assert.Equal(t, "extra", out["note"], "undeclared keys pass through unchanged")
}

func TestFlatSchemaRejectsInvalidField(t *testing.T) {
	s := NewFlatSchema(map[string]Field{
		"amount": {Rules: "gt=0", Required: true},
	})

	_, err := s.Validate(action.Params{"amount": -1})
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.InvalidInput, exc.Kind)
}

func TestFlatSchemaMissingRequiredField(t *testing.T) {
	s := NewFlatSchema(map[string]Field{
		"amount": {Required: true},
	})

	_, err := s.Validate(action.Params{})
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.InvalidInput, exc.Kind)
}
