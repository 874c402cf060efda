package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValidateFieldRequiredAndEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "nil", value: nil},
		{name: "empty string", value: ""},
		{name: "whitespace string", value: "   "},
		{name: "empty array", value: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateField("Name", FieldTypeText, tt.value, &ValidationRules{MinLength: intPtr(5)}, true)
			assert.False(t, result.IsValid)
			require.Len(t, result.Errors, 1, "required-and-empty must short-circuit to a single error")
			assert.Equal(t, "Name is required", result.Errors[0])
		})
	}
}

func TestValidateFieldOptionalAndEmpty(t *testing.T) {
	result := ValidateField("Nickname", FieldTypeEmail, "", &ValidationRules{MinLength: intPtr(100)}, false)
	assert.True(t, result.IsValid, "optional empty field passes without running type rules")
	assert.Empty(t, result.Errors)
}

func TestValidateFieldText(t *testing.T) {
	rules := &ValidationRules{MinLength: intPtr(3), MaxLength: intPtr(5)}

	assert.True(t, ValidateField("Code", FieldTypeText, "abcd", rules, true).IsValid)
	assert.False(t, ValidateField("Code", FieldTypeText, "ab", rules, true).IsValid)
	assert.False(t, ValidateField("Code", FieldTypeText, "abcdef", rules, true).IsValid)
	assert.False(t, ValidateField("Code", FieldTypeText, 42, rules, true).IsValid, "non-string rejected")

	result := ValidateField("Code", FieldTypeText, "ab", rules, true)
	assert.Contains(t, result.Errors[0], "at least 3 characters")
}

func TestValidateFieldNumber(t *testing.T) {
	rules := &ValidationRules{Min: floatPtr(1), Max: floatPtr(10)}

	assert.True(t, ValidateField("Score", FieldTypeNumber, float64(5), rules, true).IsValid)
	assert.True(t, ValidateField("Score", FieldTypeNumber, "7", rules, true).IsValid, "numeric strings coerce")
	assert.True(t, ValidateField("Score", FieldTypeNumber, float64(1), rules, true).IsValid, "bounds inclusive")
	assert.True(t, ValidateField("Score", FieldTypeNumber, float64(10), rules, true).IsValid)
	assert.False(t, ValidateField("Score", FieldTypeNumber, float64(0), rules, true).IsValid)
	assert.False(t, ValidateField("Score", FieldTypeNumber, float64(11), rules, true).IsValid)
	assert.False(t, ValidateField("Score", FieldTypeNumber, "not a number", rules, true).IsValid)
}

func TestValidateFieldEmail(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"no-at-sign", false},
		{"user@nodot", false},
		{"user name@example.com", false},
		{"@example.com", false},
		{"user@", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			result := ValidateField("Email", FieldTypeEmail, tt.value, nil, true)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateFieldPhone(t *testing.T) {
	assert.True(t, ValidateField("Phone", FieldTypePhone, "+1 (555) 123-4567", nil, true).IsValid)
	assert.True(t, ValidateField("Phone", FieldTypePhone, "0123456789", nil, true).IsValid)
	assert.False(t, ValidateField("Phone", FieldTypePhone, "call me", nil, true).IsValid)
	assert.False(t, ValidateField("Phone", FieldTypePhone, "+1", nil, true).IsValid)
}

func TestValidateFieldURLRule(t *testing.T) {
	rules := &ValidationRules{URL: true}
	assert.True(t, ValidateField("Site", FieldTypeText, "https://example.com/x", rules, true).IsValid)
	assert.False(t, ValidateField("Site", FieldTypeText, "not a url", rules, true).IsValid)
	assert.False(t, ValidateField("Site", FieldTypeText, "/relative/path", rules, true).IsValid)
}

func TestValidateFieldPattern(t *testing.T) {
	assert.True(t, ValidateField("SKU", FieldTypeText, "AB-1234", &ValidationRules{Pattern: `^[A-Z]{2}-\d{4}$`}, true).IsValid)
	assert.False(t, ValidateField("SKU", FieldTypeText, "ab-12", &ValidationRules{Pattern: `^[A-Z]{2}-\d{4}$`}, true).IsValid)

	// Malformed owner pattern skips the rule instead of failing the submitter.
	result := ValidateField("SKU", FieldTypeText, "anything", &ValidationRules{Pattern: `([unclosed`}, true)
	assert.True(t, result.IsValid)
}

func TestValidateFieldDate(t *testing.T) {
	rules := &ValidationRules{MinDate: "2026-01-01", MaxDate: "2026-12-31"}

	assert.True(t, ValidateField("When", FieldTypeDate, "2026-06-15", rules, true).IsValid)
	assert.True(t, ValidateField("When", FieldTypeDate, "2026-01-01", rules, true).IsValid, "bounds inclusive")
	assert.True(t, ValidateField("When", FieldTypeDatetime, "2026-06-15T10:30:00Z", rules, true).IsValid)
	assert.False(t, ValidateField("When", FieldTypeDate, "2025-12-31", rules, true).IsValid)
	assert.False(t, ValidateField("When", FieldTypeDate, "2027-01-01", rules, true).IsValid)
	assert.False(t, ValidateField("When", FieldTypeDate, "not a date", rules, true).IsValid)
}

func TestValidateFieldUnknownTypePasses(t *testing.T) {
	result := ValidateField("Mystery", FieldType("HOLOGRAM"), "whatever", nil, true)
	assert.True(t, result.IsValid, "unknown field types validate as opaque values")
}

func TestValidateSubmission(t *testing.T) {
	fields := []Field{
		{PublicID: "fld_name", Label: "Name", Type: FieldTypeText, Required: true},
		{PublicID: "fld_email", Label: "Email", Type: FieldTypeEmail, Required: true},
		{PublicID: "fld_age", Label: "Age", Type: FieldTypeNumber, ValidationRules: &ValidationRules{Min: floatPtr(18)}},
	}

	t.Run("valid", func(t *testing.T) {
		result := ValidateSubmission(fields, map[string]any{
			"fld_name":  "Ada",
			"fld_email": "ada@example.com",
			"fld_age":   float64(30),
		})
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
	})

	t.Run("errors keyed by field id", func(t *testing.T) {
		result := ValidateSubmission(fields, map[string]any{
			"fld_email": "nope",
			"fld_age":   float64(12),
		})
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 3)
		assert.Equal(t, []string{"Name is required"}, result.Errors["fld_name"])
		assert.Contains(t, result.Errors["fld_email"][0], "valid email")
		assert.Contains(t, result.Errors["fld_age"][0], "at least 18")
	})

	t.Run("label fallback lookup", func(t *testing.T) {
		result := ValidateSubmission(fields, map[string]any{
			"Name":  "Ada",
			"Email": "ada@example.com",
		})
		assert.True(t, result.IsValid)
	})

	t.Run("flatten preserves field order", func(t *testing.T) {
		result := ValidateSubmission(fields, map[string]any{"fld_age": "x"})
		flat := result.Flatten(fields)
		require.Len(t, flat, 3)
		assert.Equal(t, "Name is required", flat[0])
	})
}
