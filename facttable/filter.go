package facttable

import (
	"strconv"
)

// Filter is a declarative predicate over fact rows: a mapping from attribute
// name to either a scalar (equality) or a list (membership). All present keys
// are AND'ed; absent keys impose no constraint.
//
// This is intentionally a minimal filter, not a query language: no wildcards,
// ranges, or OR semantics. Filters typically arrive JSON-decoded, so numeric
// values may be float64; comparisons normalize for that.
type Filter map[string]any

// Matches reports whether the row satisfies every condition in the filter.
// A condition on an attribute the row does not carry never matches.
func (f Filter) Matches(row Row) bool {
	for name, want := range f {
		attr, ok := row.Attribute(name)
		if !ok {
			return false
		}
		if !matchCondition(attr, want) {
			return false
		}
	}
	return true
}

func matchCondition(attr, want any) bool {
	switch w := want.(type) {
	case []any:
		for _, candidate := range w {
			if matchScalar(attr, candidate) {
				return true
			}
		}
		return false
	case []string:
		for _, candidate := range w {
			if matchScalar(attr, candidate) {
				return true
			}
		}
		return false
	case []int:
		for _, candidate := range w {
			if matchScalar(attr, candidate) {
				return true
			}
		}
		return false
	default:
		return matchScalar(attr, want)
	}
}

func matchScalar(attr, want any) bool {
	return normalize(attr) == normalize(want)
}

// normalize renders a scalar into a canonical string so that JSON-decoded
// numbers (float64) compare equal to row ints and numeric strings.
func normalize(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
