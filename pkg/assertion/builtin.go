package assertion

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// evaluateEquals checks that a scalar value equals the expected
// value. Numbers compare by value regardless of their decoded
// representation.
func evaluateEquals(
	assertion Definition,
	value any,
) (bool, string) {
	if equalScalars(value, assertion.Value) {
		return true, fmt.Sprintf(
			"%s == %s",
			FormatValue(value), FormatValue(assertion.Value),
		)
	}
	return false, fmt.Sprintf(
		"expected %s, observed %s",
		FormatValue(assertion.Value), FormatValue(value),
	)
}

// evaluateVersionEquals checks that an integer tuple matches the
// expected tuple exactly, component by component.
func evaluateVersionEquals(
	assertion Definition,
	value any,
) (bool, string) {
	observed, ok := toInts(value)
	if !ok {
		return false, fmt.Sprintf(
			"observed %s is not a version tuple",
			FormatValue(value),
		)
	}
	expected, ok := toInts(assertion.Value)
	if !ok {
		return false, "expected value is not a version tuple"
	}

	if intsEqual(observed, expected) {
		return true, fmt.Sprintf(
			"version %s", formatInts(observed),
		)
	}
	return false, fmt.Sprintf(
		"expected version %s, observed %s",
		formatInts(expected), formatInts(observed),
	)
}

// evaluateSuperset checks that an observed list of names contains
// every expected name.
func evaluateSuperset(
	assertion Definition,
	value any,
) (bool, string) {
	observed, ok := toStrings(value)
	if !ok {
		return false, "value is not a list of strings"
	}
	required, ok := toStrings(assertion.Expected())
	if !ok {
		return false, "expected values are not strings"
	}

	have := make(map[string]bool, len(observed))
	for _, s := range observed {
		have[s] = true
	}
	var missing []string
	for _, s := range required {
		if !have[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return true, fmt.Sprintf(
			"all %d required entries present", len(required),
		)
	}
	sort.Strings(missing)
	return false, fmt.Sprintf(
		"missing %d of %d required entries: %s",
		len(missing), len(required),
		strings.Join(missing, ", "),
	)
}

// evaluatePresent checks that a capability handle exists.
func evaluatePresent(
	_ Definition,
	value any,
) (bool, string) {
	if value == nil {
		return false, "expected present, observed absent"
	}
	return true, "present"
}

// evaluateAbsent checks that a capability handle does not exist.
func evaluateAbsent(
	_ Definition,
	value any,
) (bool, string) {
	if value != nil {
		return false, fmt.Sprintf(
			"expected absent, observed %s", FormatValue(value),
		)
	}
	return true, "absent"
}

// evaluateIsTrue checks that a boolean flag is set.
func evaluateIsTrue(
	_ Definition,
	value any,
) (bool, string) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Sprintf(
			"observed %s is not a boolean", FormatValue(value),
		)
	}
	if !b {
		return false, "expected true, observed false"
	}
	return true, "true"
}

// evaluateGreaterThan checks that a numeric value strictly
// exceeds the expected bound.
func evaluateGreaterThan(
	assertion Definition,
	value any,
) (bool, string) {
	n, ok := toFloat64(value)
	if !ok {
		return false, fmt.Sprintf(
			"observed %s is not a number", FormatValue(value),
		)
	}
	bound, ok := toFloat64(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if n > bound {
		return true, fmt.Sprintf(
			"%s > %s", FormatValue(value), FormatValue(assertion.Value),
		)
	}
	return false, fmt.Sprintf(
		"expected > %s, observed %s",
		FormatValue(assertion.Value), FormatValue(value),
	)
}

// evaluateAllSucceeded checks a map of attempt name to error
// string. Every name listed in Values must have been attempted and
// must carry an empty (or null) error.
func evaluateAllSucceeded(
	assertion Definition,
	value any,
) (bool, string) {
	attempts, ok := value.(map[string]any)
	if !ok {
		return false, "value is not a map of attempts"
	}
	required, ok := toStrings(assertion.Expected())
	if !ok {
		return false, "expected values are not strings"
	}

	var failures []string
	for _, name := range required {
		outcome, tried := attempts[name]
		switch {
		case !tried:
			failures = append(failures, name+": not attempted")
		case outcome == nil:
		case outcome == "":
		default:
			failures = append(failures, fmt.Sprintf(
				"%s: %v", name, outcome,
			))
		}
	}
	if len(failures) == 0 {
		return true, fmt.Sprintf(
			"%s succeeded", strings.Join(required, ", "),
		)
	}
	return false, strings.Join(failures, "; ")
}

// evaluateContains checks that a descriptive string, such as a
// linked library banner, mentions the expected text.
func evaluateContains(
	assertion Definition,
	value any,
) (bool, string) {
	banner, ok := value.(string)
	if !ok {
		return false, fmt.Sprintf(
			"observed %s is not a string", FormatValue(value),
		)
	}
	want, ok := assertion.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}
	if !strings.Contains(banner, want) {
		return false, fmt.Sprintf("%q does not mention %q", banner, want)
	}
	return true, fmt.Sprintf("mentions %q", want)
}

// evaluateNoDuplicates checks that a list of names reports each
// name once.
func evaluateNoDuplicates(
	_ Definition,
	value any,
) (bool, string) {
	names, ok := toStrings(value)
	if !ok {
		return false, "value is not a list of strings"
	}

	seen := make(map[string]int, len(names))
	var repeated []string
	for _, name := range names {
		seen[name]++
		if seen[name] == 2 {
			repeated = append(repeated, name)
		}
	}
	if len(repeated) == 0 {
		return true, fmt.Sprintf("%d distinct entries", len(names))
	}
	sort.Strings(repeated)
	return false, "listed more than once: " + strings.Join(repeated, ", ")
}

// --- helpers ---

// equalScalars compares two decoded scalars. Numeric values are
// compared as float64 so that YAML ints match JSON numbers.
func equalScalars(a, b any) bool {
	if fa, ok := toFloat64(a); ok {
		fb, ok := toFloat64(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// toInt converts a whole number to int. Fractional floats are
// rejected so that 4.7 never reads as 4.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// toFloat64 converts an any value to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toInts converts a decoded list of numbers to []int.
func toInts(v any) ([]int, bool) {
	switch val := v.(type) {
	case []int:
		return val, true
	case []any:
		out := make([]int, 0, len(val))
		for _, item := range val {
			n, ok := toInt(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	}
	return nil, false
}

// toStrings converts a decoded list of strings to []string.
func toStrings(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
