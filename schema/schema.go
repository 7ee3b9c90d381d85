// Package schema provides two reference Schema backends for the engine's
// validate(schema, data) capability (§4.1, §6, §9). The engine itself never
// imports this package — schemas are an external collaborator, injected
// into an Action as action.Schema. Both backends here are "open": declared
// fields are validated (neither backend defaults or coerces values),
// undeclared fields pass through unchanged, which is what makes Chain (§4.8) and Plan (§4.9)
// data-flow possible.
package schema

import "github.com/gomind-actions/actionkit/action"

// Field describes one declared field of a FlatSchema.
type Field struct {
	// Rules is a go-playground/validator tag string, e.g. "required,gt=0".
	Rules string
	// Required marks the field as mandatory even with an empty Rules string.
	Required bool
}
