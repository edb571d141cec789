package meta

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// ValidateRecord is a dry-run check of a candidate row against the entity's
// field definitions: required fields must be present and non-empty, and a
// requiredIf expression in a field's config makes the field required when it
// evaluates true against {record}. Write paths never call this; it backs the
// explicit validate endpoint only.
func ValidateRecord(fields []Field, record map[string]any) []ErrorDetail {
	var details []ErrorDetail

	for _, f := range fields {
		required := f.Required

		if riRaw, ok := f.Config["requiredIf"]; ok && !required {
			ri, ok := riRaw.(string)
			if !ok || ri == "" {
				continue
			}
			matched, err := evalCondition(ri, record)
			if err != nil {
				details = append(details, ErrorDetail{
					Field:   f.Name,
					Rule:    "requiredIf",
					Message: fmt.Sprintf("invalid requiredIf expression: %v", err),
				})
				continue
			}
			required = matched
		}

		if required && isEmpty(record[f.Name]) {
			details = append(details, ErrorDetail{
				Field:   f.Name,
				Rule:    "required",
				Message: fmt.Sprintf("field %s is required", f.Name),
			})
		}
	}

	return details
}

// evalCondition compiles and runs a requiredIf expression against the record.
func evalCondition(expression string, record map[string]any) (bool, error) {
	env := map[string]any{"record": record}
	prog, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile expression: %w", err)
	}
	out, err := expr.Run(prog, env)
	if err != nil {
		return false, fmt.Errorf("run expression: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean")
	}
	return matched, nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}
