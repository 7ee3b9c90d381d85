package action

import "fmt"

// Params is the unordered, open mapping threaded through validation, hooks,
// and run. Unknown keys always pass through unchanged.
type Params map[string]any

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge shallow-merges other into a copy of p, with other's keys winning on
// conflict. This is the merge rule Chain (C8) and Plan (C9) both use to
// fold a step's result back into the running params.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Result is the outcome of one Action attempt. Exactly one of (OK, Err) is
// populated for a terminal outcome; Directive is always optional and is
// never interpreted by the engine.
type Result struct {
	OK        bool
	Data      Params
	Err       *Exception
	Directive any
	HasDirective bool
}

// Ok builds a successful result.
func Ok(data Params) Result {
	return Result{OK: true, Data: data}
}

// OkWithDirective builds a successful result carrying an opaque directive.
func OkWithDirective(data Params, directive any) Result {
	return Result{OK: true, Data: data, Directive: directive, HasDirective: true}
}

// Err builds a failed result.
func Err(exc *Exception) Result {
	return Result{OK: false, Err: exc}
}

// ErrWithDirective builds a failed result carrying an opaque directive,
// preserved even through compensation (§4.5).
func ErrWithDirective(exc *Exception, directive any) Result {
	return Result{OK: false, Err: exc, Directive: directive, HasDirective: true}
}

// NormalizeRunResult implements the §4.6 result-shape normalization table
// for values returned directly from a Run callback (or from a panic
// recovery / malformed-return path). v may already be a Result, a bare
// Params map, an error, a string, or anything else.
func NormalizeRunResult(v any) Result {
	switch x := v.(type) {
	case Result:
		return x
	case *Result:
		if x == nil {
			return Err(NewInternal("unexpected run result", nil))
		}
		return *x
	case Params:
		return Ok(x)
	case map[string]any:
		return Ok(Params(x))
	case *Exception:
		return Err(x)
	case error:
		if exc, ok := AsException(x); ok {
			return Err(exc)
		}
		return Err(NewExecutionFailure(x.Error()))
	case string:
		return Err(NewExecutionFailure(x))
	case nil:
		return Err(NewInternal("unexpected run result", nil))
	default:
		return Err(NewInternal(fmt.Sprintf("unexpected run result: %+v", x), nil))
	}
}

// IsNormalized reports whether applying NormalizeRunResult to r.Data/r.Err
// again would be a no-op. Result normalization is idempotent: this is used
// by tests asserting that property.
func IsNormalized(r Result) bool {
	again := NormalizeRunResult(r)
	if again.OK != r.OK {
		return false
	}
	if r.OK {
		return true
	}
	return again.Err != nil && r.Err != nil && again.Err.Kind == r.Err.Kind && again.Err.Message == r.Err.Message
}
