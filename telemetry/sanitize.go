package telemetry

import (
	"github.com/gomind-actions/actionkit/action"
)

// redactedKeys is the deny-list from §6, inverted from
// core/config.go's emitFrameworkMetric allow-list (which keeps only a
// handful of low-cardinality fields as metric labels): telemetry payloads
// carry full params, so instead of allow-listing a few safe keys this
// denies the ones known to carry secrets.
var redactedKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"secret":        true,
	"authorization": true,
	"cookie":        true,
	"api_key":       true,
	"client_secret": true,
	"private_key":   true,
}

const (
	maxBinaryBytes   = 1024
	maxMetadataItems = 50
	maxDepth         = 4
)

// Sanitize returns a copy of params safe to attach to a telemetry event:
// redacted-key values replaced, binary values over 1KiB truncated,
// maps/slices bounded to maxMetadataItems entries, and nesting capped at
// maxDepth.
func Sanitize(params action.Params) action.Params {
	out, _ := sanitizeValue(map[string]any(params), 0).(map[string]any)
	return action.Params(out)
}

func sanitizeValue(v any, depth int) any {
	if depth >= maxDepth {
		return "<max depth reached>"
	}
	switch x := v.(type) {
	case map[string]any:
		return sanitizeMap(x, depth)
	case action.Params:
		return sanitizeMap(map[string]any(x), depth)
	case []any:
		return sanitizeSlice(x, depth)
	case []byte:
		if len(x) > maxBinaryBytes {
			return x[:maxBinaryBytes]
		}
		return x
	default:
		return x
	}
}

func sanitizeMap(m map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(m))
	i := 0
	for k, v := range m {
		if i >= maxMetadataItems {
			out["..."] = "truncated: exceeded max_metadata_items"
			break
		}
		i++
		if redactedKeys[k] {
			out[k] = "<redacted>"
			continue
		}
		out[k] = sanitizeValue(v, depth+1)
	}
	return out
}

func sanitizeSlice(s []any, depth int) []any {
	n := len(s)
	truncated := false
	if n > maxMetadataItems {
		n = maxMetadataItems
		truncated = true
	}
	out := make([]any, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, sanitizeValue(s[i], depth+1))
	}
	if truncated {
		out = append(out, "...truncated: exceeded max_metadata_items")
	}
	return out
}
