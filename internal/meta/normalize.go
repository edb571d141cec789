package meta

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Normalization rules shared by the entity metadata service and the
// column/field sub-services: JSON blob coercion, boolean coercion, and
// tolerant snake_case/camelCase payload access.

// ParseJSONObject decodes a stored JSON blob into a map. NULL, empty and
// malformed values all come back as an empty object; malformed stored JSON
// is recovered, never surfaced.
func ParseJSONObject(v any) map[string]any {
	var raw string
	switch val := v.(type) {
	case nil:
		return map[string]any{}
	case string:
		raw = val
	case []byte:
		raw = string(val)
	case map[string]any:
		return val
	default:
		return map[string]any{}
	}
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// MarshalJSONObject serializes a payload value to JSON text for storage.
// Anything that is not a JSON object becomes "{}".
func MarshalJSONObject(v any) string {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BoolOf coerces stored 0/1 integers and JSON booleans to bool.
func BoolOf(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case int:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val == "true" || val == "1"
	default:
		return false
	}
}

// IntOf coerces JSON numbers and stored integers to int.
func IntOf(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		n, _ := val.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(val)
		return n
	default:
		return 0
	}
}

// StringOf coerces a payload value to string, with "" for nil.
func StringOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Pick reads a payload key accepting both snake_case and camelCase spellings.
// The snake_case spelling wins when both are present.
func Pick(m map[string]any, snake, camel string) any {
	if v, ok := m[snake]; ok && v != nil {
		return v
	}
	return m[camel]
}

// fieldPayloadKeys are the declared field payload keys (both casings) that
// must not be folded into config.
var fieldPayloadKeys = map[string]bool{
	"id":         true,
	"entity_id":  true,
	"entityId":   true,
	"name":       true,
	"label":      true,
	"type":       true,
	"required":   true,
	"depends_on": true,
	"dependsOn":  true,
	"sort_order": true,
	"sortOrder":  true,
	"config":     true,
}

// FieldConfig extracts a field payload's config object and folds top-level
// extension keys (requiredIf, optionsAPI, ...) into it, so a document read
// back with config merged flat round-trips unchanged. Config is the source
// of truth: a key already present inside config is never overwritten.
func FieldConfig(field map[string]any) map[string]any {
	config := ParseJSONObject(field["config"])
	for k, v := range field {
		if fieldPayloadKeys[k] || v == nil {
			continue
		}
		if _, present := config[k]; !present {
			config[k] = v
		}
	}
	return config
}

// reservedFieldKeys are the stable field keys that a config merge must never
// shadow.
var reservedFieldKeys = map[string]bool{
	"id":         true,
	"entity_id":  true,
	"name":       true,
	"label":      true,
	"type":       true,
	"required":   true,
	"depends_on": true,
	"sort_order": true,
}

// MergeConfig spreads config keys into the field's top-level representation,
// skipping reserved keys.
func MergeConfig(out map[string]any, config map[string]any) {
	for k, v := range config {
		if reservedFieldKeys[k] {
			continue
		}
		out[k] = v
	}
}
