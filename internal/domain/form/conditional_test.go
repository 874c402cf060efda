package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rules(logic LogicCombinator, rs ...LogicRule) *ConditionalLogic {
	return &ConditionalLogic{Logic: logic, Rules: rs}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		logic   *ConditionalLogic
		answers map[string]any
		want    bool
	}{
		{
			name:    "nil logic is false",
			logic:   nil,
			answers: map[string]any{"fld_a": "x"},
			want:    false,
		},
		{
			name:    "empty rules is false",
			logic:   rules(LogicAnd),
			answers: map[string]any{"fld_a": "x"},
			want:    false,
		},
		{
			name:    "equals case-insensitive",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpEquals, Value: "Yes", Action: ActionShow}),
			answers: map[string]any{"fld_a": "yes"},
			want:    true,
		},
		{
			name:    "equals boolean against string",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpEquals, Value: "true", Action: ActionShow}),
			answers: map[string]any{"fld_a": true},
			want:    true,
		},
		{
			name:    "equals against checkbox array matches membership",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpEquals, Value: "b", Action: ActionShow}),
			answers: map[string]any{"fld_a": []any{"a", "B", "c"}},
			want:    true,
		},
		{
			name:    "not equals",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpNotEquals, Value: "no", Action: ActionShow}),
			answers: map[string]any{"fld_a": "yes"},
			want:    true,
		},
		{
			name:    "contains substring case-insensitive",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpContains, Value: "WORLD", Action: ActionShow}),
			answers: map[string]any{"fld_a": "hello world"},
			want:    true,
		},
		{
			name:    "contains over array is membership not substring",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpContains, Value: "ell", Action: ActionShow}),
			answers: map[string]any{"fld_a": []any{"hello"}},
			want:    false,
		},
		{
			name:    "greater than with numeric string answer",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_n", Operator: OpGreaterThan, Value: float64(10), Action: ActionShow}),
			answers: map[string]any{"fld_n": "15"},
			want:    true,
		},
		{
			name:    "greater than with unparsable answer is false",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_n", Operator: OpGreaterThan, Value: float64(10), Action: ActionShow}),
			answers: map[string]any{"fld_n": "abc"},
			want:    false,
		},
		{
			name:    "less than or equal boundary",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_n", Operator: OpLessThanOrEqual, Value: float64(5), Action: ActionShow}),
			answers: map[string]any{"fld_n": float64(5)},
			want:    true,
		},
		{
			name:    "is empty on missing answer",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpIsEmpty, Action: ActionShow}),
			answers: map[string]any{},
			want:    true,
		},
		{
			name:    "is empty on whitespace string",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpIsEmpty, Action: ActionShow}),
			answers: map[string]any{"fld_a": "   "},
			want:    true,
		},
		{
			name:    "is not empty on empty array",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: OpIsNotEmpty, Action: ActionShow}),
			answers: map[string]any{"fld_a": []any{}},
			want:    false,
		},
		{
			name: "AND needs all rules",
			logic: rules(LogicAnd,
				LogicRule{FieldID: "fld_a", Operator: OpEquals, Value: "yes", Action: ActionShow},
				LogicRule{FieldID: "fld_b", Operator: OpEquals, Value: "yes", Action: ActionShow},
			),
			answers: map[string]any{"fld_a": "yes", "fld_b": "no"},
			want:    false,
		},
		{
			name: "OR needs any rule",
			logic: rules(LogicOr,
				LogicRule{FieldID: "fld_a", Operator: OpEquals, Value: "yes", Action: ActionShow},
				LogicRule{FieldID: "fld_b", Operator: OpEquals, Value: "yes", Action: ActionShow},
			),
			answers: map[string]any{"fld_a": "no", "fld_b": "yes"},
			want:    true,
		},
		{
			name:    "unknown combinator defaults to AND",
			logic:   &ConditionalLogic{Logic: "XOR", Rules: []LogicRule{{FieldID: "fld_a", Operator: OpEquals, Value: "yes", Action: ActionShow}}},
			answers: map[string]any{"fld_a": "yes"},
			want:    true,
		},
		{
			name:    "unknown operator is false",
			logic:   rules(LogicAnd, LogicRule{FieldID: "fld_a", Operator: "MATCHES", Value: "x", Action: ActionShow}),
			answers: map[string]any{"fld_a": "x"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.logic, tt.answers))
		})
	}
}

func TestClassify(t *testing.T) {
	showWhenYes := rules(LogicAnd, LogicRule{FieldID: "fld_trigger", Operator: OpEquals, Value: "yes", Action: ActionShow})
	hideWhenYes := rules(LogicAnd, LogicRule{FieldID: "fld_trigger", Operator: OpEquals, Value: "yes", Action: ActionHide})
	requireWhenYes := rules(LogicAnd, LogicRule{FieldID: "fld_trigger", Operator: OpEquals, Value: "yes", Action: ActionRequire})
	skipWhenYes := rules(LogicAnd, LogicRule{FieldID: "fld_trigger", Operator: OpEquals, Value: "yes", Action: ActionSkip})

	fields := []Field{
		{PublicID: "fld_trigger", Type: FieldTypeRadio, Label: "Trigger", Required: true},
		{PublicID: "fld_show", Type: FieldTypeText, Label: "Shown", ConditionalLogic: showWhenYes},
		{PublicID: "fld_hide", Type: FieldTypeText, Label: "Hidden", Required: true, ConditionalLogic: hideWhenYes},
		{PublicID: "fld_require", Type: FieldTypeText, Label: "Conditionally required", ConditionalLogic: requireWhenYes},
		{PublicID: "fld_skip", Type: FieldTypeText, Label: "Skippable", Required: true, ConditionalLogic: skipWhenYes},
	}

	t.Run("condition true", func(t *testing.T) {
		c := Classify(fields, map[string]any{"fld_trigger": "yes"})

		assert.True(t, c.IsVisible("fld_trigger"))
		assert.True(t, c.IsRequired("fld_trigger"))

		assert.True(t, c.IsVisible("fld_show"))
		assert.False(t, c.IsRequired("fld_show"))

		assert.False(t, c.IsVisible("fld_hide"))
		assert.False(t, c.IsRequired("fld_hide"), "hidden field must not stay required")

		assert.True(t, c.IsVisible("fld_require"))
		assert.True(t, c.IsRequired("fld_require"))

		assert.True(t, c.IsSkipped("fld_skip"))
		assert.False(t, c.IsVisible("fld_skip"))
		assert.False(t, c.IsRequired("fld_skip"))
	})

	t.Run("condition false", func(t *testing.T) {
		c := Classify(fields, map[string]any{"fld_trigger": "no"})

		assert.False(t, c.IsVisible("fld_show"), "SHOW with false condition hides")

		assert.True(t, c.IsVisible("fld_hide"))
		assert.True(t, c.IsRequired("fld_hide"))

		assert.True(t, c.IsVisible("fld_require"))
		assert.False(t, c.IsRequired("fld_require"), "REQUIRE with false condition falls back to static requiredness")

		assert.True(t, c.IsVisible("fld_skip"))
		assert.True(t, c.IsRequired("fld_skip"))
		assert.False(t, c.IsSkipped("fld_skip"))
	})

	t.Run("first rule action wins", func(t *testing.T) {
		mixed := []Field{{
			PublicID: "fld_m",
			Type:     FieldTypeText,
			ConditionalLogic: rules(LogicAnd,
				LogicRule{FieldID: "fld_trigger", Operator: OpEquals, Value: "yes", Action: ActionHide},
				LogicRule{FieldID: "fld_other", Operator: OpIsNotEmpty, Action: ActionShow},
			),
		}}
		c := Classify(mixed, map[string]any{"fld_trigger": "yes", "fld_other": "x"})
		assert.False(t, c.IsVisible("fld_m"), "HIDE from the first rule applies even though a later rule says SHOW")
	})
}
