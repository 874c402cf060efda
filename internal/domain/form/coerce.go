package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing date-ish answers. JSON numbers
// are handled separately as unix seconds.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isEmptyValue treats nil, empty string, and empty array as empty, matching
// how clients omit unanswered fields.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}

// toFloat coerces an answer to a finite float64. Returns false for anything
// unparsable so comparisons degrade instead of panicking.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// toComparableString lowercases scalars so booleans and strings compare
// loosely ("True" == true).
func toComparableString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(val))
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return strings.ToLower(val.String())
	default:
		return strings.ToLower(fmt.Sprintf("%v", val))
	}
}

// parseDate coerces an answer to a time. Accepts the supported layouts plus
// unix seconds.
func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		return time.Unix(int64(val), 0).UTC(), true
	case int64:
		return time.Unix(val, 0).UTC(), true
	}
	return time.Time{}, false
}

// asSlice normalizes multi-value answers (checkbox selections) to []any.
func asSlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
