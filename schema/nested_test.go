package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomind-actions/actionkit/action"
)

func numberSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Properties = openapi3.Schemas{
		"value": openapi3.NewSchemaRef("", openapi3.NewFloat64Schema()),
	}
	s.Required = []string{"value"}
	return s
}

func TestNestedSchemaValidatesAndPassesThroughExtras(t *testing.T) {
	s := NewNestedSchema(numberSchema())
	out, err := s.Validate(action.Params{"value": 1.5, "extra": "kept"})
	require.NoError(t, err)
	assert.Equal(t, "kept", out["extra"])
}

func TestNestedSchemaRejectsMissingRequired(t *testing.T) {
	s := NewNestedSchema(numberSchema())
	_, err := s.Validate(action.Params{"extra": "kept"})
	require.Error(t, err)
	exc, ok := action.AsException(err)
	require.True(t, ok)
	assert.Equal(t, action.InvalidInput, exc.Kind)
}

func TestNestedSchemaNilIsOpen(t *testing.T) {
	s := NewNestedSchema(nil)
	out, err := s.Validate(action.Params{"anything": true})
	require.NoError(t, err)
	assert.True(t, out["anything"].(bool))
}
