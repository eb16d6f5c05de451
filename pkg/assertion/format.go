package assertion

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatValue renders an observed or expected value for diffs:
// numeric lists as tuples, strings quoted, maps with sorted keys
// and nil as "absent".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "absent"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []int:
		return formatInts(val)
	case []any:
		if ints, ok := toInts(val); ok && len(ints) > 0 {
			return formatInts(ints)
		}
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + FormatValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}
