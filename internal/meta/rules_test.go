package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecordRequired(t *testing.T) {
	fields := []Field{
		{Name: "name", Required: true},
		{Name: "age"},
	}

	details := ValidateRecord(fields, map[string]any{"name": "Ada"})
	assert.Empty(t, details)

	details = ValidateRecord(fields, map[string]any{"age": 30})
	require.Len(t, details, 1)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "required", details[0].Rule)

	// Empty string counts as missing.
	details = ValidateRecord(fields, map[string]any{"name": ""})
	require.Len(t, details, 1)
	assert.Equal(t, "name", details[0].Field)
}

func TestValidateRecordRequiredIf(t *testing.T) {
	fields := []Field{
		{Name: "country"},
		{Name: "state", Config: map[string]any{"requiredIf": `record.country == "US"`}},
	}

	// Condition false: state optional.
	details := ValidateRecord(fields, map[string]any{"country": "FR"})
	assert.Empty(t, details)

	// Condition true and state missing: violation.
	details = ValidateRecord(fields, map[string]any{"country": "US"})
	require.Len(t, details, 1)
	assert.Equal(t, "state", details[0].Field)
	assert.Equal(t, "required", details[0].Rule)

	// Condition true and state present: fine.
	details = ValidateRecord(fields, map[string]any{"country": "US", "state": "NY"})
	assert.Empty(t, details)
}

func TestValidateRecordInvalidExpression(t *testing.T) {
	fields := []Field{
		{Name: "state", Config: map[string]any{"requiredIf": "record.country ==)"}},
	}

	details := ValidateRecord(fields, map[string]any{"country": "US"})
	require.Len(t, details, 1)
	assert.Equal(t, "state", details[0].Field)
	assert.Equal(t, "requiredIf", details[0].Rule)
}

func TestValidateRecordNonStringRequiredIfIgnored(t *testing.T) {
	fields := []Field{
		{Name: "state", Config: map[string]any{"requiredIf": map[string]any{"field": "country"}}},
	}
	assert.Empty(t, ValidateRecord(fields, map[string]any{}))
}
