package form

import "strings"

// Classification is the evaluator's verdict over a form's fields for one set
// of submitted answers. Sets are keyed by field public ID.
type Classification struct {
	Visible  map[string]bool
	Required map[string]bool
	Skipped  map[string]bool
}

// IsVisible reports whether the field survived classification.
func (c Classification) IsVisible(fieldID string) bool { return c.Visible[fieldID] }

// IsRequired reports whether the field must carry a non-empty answer.
func (c Classification) IsRequired(fieldID string) bool { return c.Required[fieldID] }

// IsSkipped reports whether the field was excluded from validation entirely.
func (c Classification) IsSkipped(fieldID string) bool { return c.Skipped[fieldID] }

// Evaluate computes the boolean condition of a rule set against submitted
// answers. Rules combine with AND (all) or OR (any). The function is total:
// malformed values make the individual rule false, never panic.
func Evaluate(logic *ConditionalLogic, answers map[string]any) bool {
	if logic == nil || len(logic.Rules) == 0 {
		return false
	}

	if logic.Logic == LogicOr {
		for _, rule := range logic.Rules {
			if evaluateRule(rule, answers) {
				return true
			}
		}
		return false
	}

	// AND is the default combinator.
	for _, rule := range logic.Rules {
		if !evaluateRule(rule, answers) {
			return false
		}
	}
	return true
}

func evaluateRule(rule LogicRule, answers map[string]any) bool {
	answer := answers[rule.FieldID]

	switch rule.Operator {
	case OpEquals:
		return looseEquals(answer, rule.Value)
	case OpNotEquals:
		return !looseEquals(answer, rule.Value)
	case OpContains:
		return looseContains(answer, rule.Value)
	case OpNotContains:
		return !looseContains(answer, rule.Value)
	case OpGreaterThan:
		return compareNumeric(answer, rule.Value, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return compareNumeric(answer, rule.Value, func(a, b float64) bool { return a < b })
	case OpGreaterThanOrEqual:
		return compareNumeric(answer, rule.Value, func(a, b float64) bool { return a >= b })
	case OpLessThanOrEqual:
		return compareNumeric(answer, rule.Value, func(a, b float64) bool { return a <= b })
	case OpIsEmpty:
		return isEmptyValue(answer)
	case OpIsNotEmpty:
		return !isEmptyValue(answer)
	}
	return false
}

// looseEquals compares across type mismatches: arrays match when they contain
// the value (checkbox answers), scalars via lowercase string comparison.
func looseEquals(answer, target any) bool {
	if items, ok := asSlice(answer); ok {
		want := toComparableString(target)
		for _, item := range items {
			if toComparableString(item) == want {
				return true
			}
		}
		return false
	}
	return toComparableString(answer) == toComparableString(target)
}

// looseContains is case-insensitive substring match for strings and
// membership for arrays.
func looseContains(answer, target any) bool {
	if items, ok := asSlice(answer); ok {
		want := toComparableString(target)
		for _, item := range items {
			if toComparableString(item) == want {
				return true
			}
		}
		return false
	}
	s, ok := answer.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), toComparableString(target))
}

// compareNumeric coerces both sides to floats; an unparsable side makes the
// rule false rather than erroring.
func compareNumeric(answer, target any, cmp func(a, b float64) bool) bool {
	a, ok := toFloat(answer)
	if !ok {
		return false
	}
	b, ok := toFloat(target)
	if !ok {
		return false
	}
	return cmp(a, b)
}

// Classify resolves each field's effective visibility, requiredness, and skip
// status from the submitted answers.
//
// The acted-upon outcome is decided by the FIRST rule's action; every rule
// still contributes to the combined boolean condition. Fields without logic
// are visible, required iff statically required.
func Classify(fields []Field, answers map[string]any) Classification {
	result := Classification{
		Visible:  make(map[string]bool, len(fields)),
		Required: make(map[string]bool, len(fields)),
		Skipped:  make(map[string]bool),
	}

	for _, field := range fields {
		logic := field.ConditionalLogic
		if logic == nil || len(logic.Rules) == 0 {
			result.Visible[field.PublicID] = true
			if field.Required {
				result.Required[field.PublicID] = true
			}
			continue
		}

		condition := Evaluate(logic, answers)
		action := logic.Rules[0].Action

		switch {
		case action == ActionSkip && condition:
			result.Skipped[field.PublicID] = true
		case action == ActionShow && !condition:
			// hidden: absent from both sets
		case action == ActionHide && condition:
			// hidden
		case action == ActionRequire && condition:
			result.Visible[field.PublicID] = true
			result.Required[field.PublicID] = true
		default:
			result.Visible[field.PublicID] = true
			if field.Required {
				result.Required[field.PublicID] = true
			}
		}
	}

	return result
}
