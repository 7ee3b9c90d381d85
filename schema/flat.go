package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gomind-actions/actionkit/action"
)

// FlatSchema is the "keyword-option" backend (§4.1, §6): a flat map of
// field name to validation rule, checked with
// github.com/go-playground/validator (the same struct-tag validator the
// teacher's config layer and the rest of the pack use for input checking,
// here driven dynamically instead of via struct tags).
//
// Fields not listed in Rules pass through Validate unchanged (open
// schema).
type FlatSchema struct {
	Rules    map[string]Field
	validate *validator.Validate
}

// NewFlatSchema builds a FlatSchema from field name -> Field.
func NewFlatSchema(rules map[string]Field) *FlatSchema {
	return &FlatSchema{Rules: rules, validate: validator.New()}
}

// Validate checks every declared field against its rule string and leaves
// everything else in data untouched.
func (s *FlatSchema) Validate(data action.Params) (action.Params, error) {
	out := data.Clone()
	for name, field := range s.Rules {
		value, present := data[name]
		if !present {
			if field.Required {
				return nil, action.NewException(action.InvalidInput,
					fmt.Sprintf("missing required field %q", name), map[string]any{"field": name})
			}
			continue
		}
		if field.Rules == "" {
			continue
		}
		if err := s.validate.Var(value, field.Rules); err != nil {
			return nil, action.NewException(action.InvalidInput,
				fmt.Sprintf("field %q failed validation: %s", name, err.Error()),
				map[string]any{"field": name, "rules": field.Rules})
		}
	}
	return out, nil
}
