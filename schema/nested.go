package schema

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/gomind-actions/actionkit/action"
)

// NestedSchema is the "composable/transforming nested-schema" backend
// (§4.1, §6) built on github.com/getkin/kin-openapi's openapi3.Schema —
// objects with nested properties, $ref-style composition ( AllOf/OneOf),
// and structural constraints. An openapi3.Schema only rejects properties
// named in AdditionalPropertiesAllowed == false, so undeclared keys pass
// through unvalidated by default: the same open semantics as FlatSchema,
// expressed through JSON-Schema-shaped composition instead of a flat rule
// map. The same *openapi3.Schema also doubles as action.ToTool's
// ParametersSchema payload (§6): it marshals directly to JSON Schema.
type NestedSchema struct {
	Schema *openapi3.Schema
}

// NewNestedSchema wraps an existing openapi3.Schema.
func NewNestedSchema(s *openapi3.Schema) *NestedSchema {
	return &NestedSchema{Schema: s}
}

// Validate runs data through the OpenAPI schema's structural validation.
// On success it returns data unchanged: kin-openapi validates in place and
// does not itself add/remove keys, so no re-merge of extras is needed.
func (s *NestedSchema) Validate(data action.Params) (action.Params, error) {
	if s.Schema == nil {
		return data, nil
	}
	if err := s.Schema.VisitJSON(map[string]any(data)); err != nil {
		return nil, action.NewException(action.InvalidInput, err.Error(), map[string]any{"cause": err})
	}
	return data, nil
}

// ParametersJSON renders the schema's JSON representation for use as
// action.ToTool's ParametersSchema.
func (s *NestedSchema) ParametersJSON() ([]byte, error) {
	if s.Schema == nil {
		return []byte(`{}`), nil
	}
	return s.Schema.MarshalJSON()
}
