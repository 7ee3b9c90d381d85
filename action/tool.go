package action

import (
	"context"
	"encoding/json"
)

// Tool is what ToTool exposes to external collaborators (§6): a
// self-describing capability with a JSON-Schema-like parameter shape and a
// callable thunk that accepts/returns JSON. Grounded on the teacher's
// Capability{Name, Description, Handler} self-description idiom, widened to
// carry a schema payload and a direct invoke function instead of an HTTP
// handler (the engine has no HTTP server of its own).
type Tool struct {
	Name             string
	Description      string
	ParametersSchema json.RawMessage
	Invoke           func(ctx context.Context, args map[string]any) (json.RawMessage, error)
}

// Invoker is implemented by anything that can run an Action end-to-end
// (name resolution + the Executor pipeline). Package engine implements it;
// ToTool takes one so action doesn't import engine (no cycle).
type Invoker interface {
	Invoke(ctx context.Context, act Action, params Params) Result
}

// ToTool builds a Tool for act, running invocations through inv.
// invoke accepts string-keyed maps (as decoded from JSON), executes via the
// Executor, and JSON-encodes the result or error per §6.
func ToTool(act Action, inv Invoker, parametersSchema json.RawMessage) Tool {
	md := act.Metadata()
	return Tool{
		Name:             md.Name,
		Description:      md.Description,
		ParametersSchema: parametersSchema,
		Invoke: func(ctx context.Context, args map[string]any) (json.RawMessage, error) {
			result := inv.Invoke(ctx, act, Params(args))
			return encodeResult(result)
		},
	}
}

func encodeResult(r Result) (json.RawMessage, error) {
	if r.OK {
		payload := map[string]any{"ok": true, "data": r.Data}
		if r.HasDirective {
			payload["directive"] = r.Directive
		}
		return json.Marshal(payload)
	}
	payload := map[string]any{
		"ok":    false,
		"error": map[string]any{"kind": r.Err.Kind, "message": r.Err.Message, "details": r.Err.Details},
	}
	if r.HasDirective {
		payload["directive"] = r.Directive
	}
	return json.Marshal(payload)
}
