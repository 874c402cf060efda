package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/formgrid/forms-api/internal/infrastructure/logger"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Loose international phone: optional +, digits with common separators.
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{4,19}$`)
)

// FieldResult is the outcome of validating a single field value.
type FieldResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// SubmissionResult aggregates per-field validation errors, keyed by field
// public ID.
type SubmissionResult struct {
	IsValid bool                `json:"isValid"`
	Errors  map[string][]string `json:"errors"`
}

// Flatten produces a single ordered list of error messages for display.
func (r SubmissionResult) Flatten(fields []Field) []string {
	var out []string
	for _, field := range fields {
		out = append(out, r.Errors[field.PublicID]...)
	}
	return out
}

// AnswerFor resolves a field's submitted value, falling back to the label key
// when the client keyed answers by label instead of field ID. Labels stay
// resolvable across step replaces, where field IDs do not survive.
func AnswerFor(field Field, data map[string]any) any {
	if v, ok := data[field.PublicID]; ok {
		return v
	}
	return data[field.Label]
}

// ValidateField checks one value against a field's type and rules.
//
// Required-and-empty fails immediately with a single error; optional-and-empty
// passes without running any further rules.
func ValidateField(label string, fieldType FieldType, value any, rules *ValidationRules, required bool) FieldResult {
	if isEmptyValue(value) {
		if required {
			return FieldResult{IsValid: false, Errors: []string{fmt.Sprintf("%s is required", label)}}
		}
		return FieldResult{IsValid: true, Errors: []string{}}
	}

	var errs []string

	switch fieldType {
	case FieldTypeText, FieldTypeTextarea:
		errs = append(errs, validateLength(label, value, rules)...)
	case FieldTypeNumber, FieldTypeRating, FieldTypeScale:
		errs = append(errs, validateNumber(label, value, rules)...)
	case FieldTypeEmail:
		errs = append(errs, validateEmail(label, value)...)
	case FieldTypePhone:
		errs = append(errs, validatePhone(label, value)...)
	case FieldTypeDate, FieldTypeDatetime:
		errs = append(errs, validateDate(label, value, rules)...)
	}

	if rules != nil {
		if rules.Email && fieldType != FieldTypeEmail {
			errs = append(errs, validateEmail(label, value)...)
		}
		if rules.Phone && fieldType != FieldTypePhone {
			errs = append(errs, validatePhone(label, value)...)
		}
		if rules.URL {
			errs = append(errs, validateURL(label, value)...)
		}
		if rules.Pattern != "" {
			errs = append(errs, validatePattern(label, value, rules.Pattern)...)
		}
	}

	if errs == nil {
		errs = []string{}
	}
	return FieldResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateSubmission validates the given fields against the submitted data.
// The caller pre-filters fields to the classifier-visible set; hidden and
// skipped fields must not be passed in.
func ValidateSubmission(fields []Field, data map[string]any) SubmissionResult {
	result := SubmissionResult{IsValid: true, Errors: make(map[string][]string)}

	for _, field := range fields {
		value := AnswerFor(field, data)
		fieldResult := ValidateField(field.Label, field.Type, value, field.ValidationRules, field.Required)
		if !fieldResult.IsValid {
			result.IsValid = false
			result.Errors[field.PublicID] = fieldResult.Errors
		}
	}

	return result
}

func validateLength(label string, value any, rules *ValidationRules) []string {
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s must be text", label)}
	}
	if rules == nil {
		return nil
	}
	var errs []string
	length := len([]rune(s))
	if rules.MinLength != nil && length < *rules.MinLength {
		errs = append(errs, fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength))
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		errs = append(errs, fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength))
	}
	return errs
}

func validateNumber(label string, value any, rules *ValidationRules) []string {
	n, ok := toFloat(value)
	if !ok {
		return []string{fmt.Sprintf("%s must be a valid number", label)}
	}
	if rules == nil {
		return nil
	}
	var errs []string
	if rules.Min != nil && n < *rules.Min {
		errs = append(errs, fmt.Sprintf("%s must be at least %v", label, *rules.Min))
	}
	if rules.Max != nil && n > *rules.Max {
		errs = append(errs, fmt.Sprintf("%s must be at most %v", label, *rules.Max))
	}
	return errs
}

func validateEmail(label string, value any) []string {
	s, ok := value.(string)
	if !ok || !emailPattern.MatchString(strings.TrimSpace(s)) {
		return []string{fmt.Sprintf("%s must be a valid email address", label)}
	}
	return nil
}

func validatePhone(label string, value any) []string {
	s, ok := value.(string)
	if !ok || !phonePattern.MatchString(strings.TrimSpace(s)) {
		return []string{fmt.Sprintf("%s must be a valid phone number", label)}
	}
	return nil
}

func validateURL(label string, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s must be a valid URL", label)}
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return []string{fmt.Sprintf("%s must be a valid URL", label)}
	}
	return nil
}

// validatePattern compiles the owner-authored pattern at validation time. A
// malformed pattern is an owner configuration problem, not a submitter error:
// it is logged and the rule is skipped. regexp's RE2 engine keeps matching
// linear-time, so untrusted patterns cannot blow up the request.
func validatePattern(label string, value any, pattern string) []string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		log := logger.GetLogger()
		log.Warn().
			Str("field", label).
			Str("pattern", pattern).
			Err(err).
			Msg("invalid validation pattern, rule skipped")
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s has an invalid format", label)}
	}
	if !re.MatchString(s) {
		return []string{fmt.Sprintf("%s has an invalid format", label)}
	}
	return nil
}

func validateDate(label string, value any, rules *ValidationRules) []string {
	t, ok := parseDate(value)
	if !ok {
		return []string{fmt.Sprintf("%s must be a valid date", label)}
	}
	if rules == nil {
		return nil
	}
	var errs []string
	if rules.MinDate != "" {
		if min, ok := parseDate(rules.MinDate); ok && t.Before(min) {
			errs = append(errs, fmt.Sprintf("%s must be on or after %s", label, rules.MinDate))
		}
	}
	if rules.MaxDate != "" {
		if max, ok := parseDate(rules.MaxDate); ok && t.After(max) {
			errs = append(errs, fmt.Sprintf("%s must be on or before %s", label, rules.MaxDate))
		}
	}
	return errs
}
