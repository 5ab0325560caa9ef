// Package record models the loosely-typed field mappings contributed by data
// sources. Field names vary by source, so lookups go through explicit alias
// tables rather than fallback chains scattered through callers.
package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one raw field mapping contributed by a single source for one
// logical entity occurrence. No schema is guaranteed; absent or unknown
// fields are tolerated and skipped.
type Record map[string]any

// Value returns the first present, non-nil value among the given keys.
func (r Record) Value(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first non-empty string representation among the given
// keys. Numeric values are formatted; whitespace is trimmed.
func (r Record) String(keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		s := stringify(v)
		if s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first value among the given keys coercible to an integer.
// Floats are truncated; strings are parsed.
func (r Record) Int(keys ...string) (int, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if n, ok := toInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

// Float returns the first value among the given keys coercible to a float.
func (r Record) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	case float64:
		// JSON numbers decode as float64; avoid a trailing ".0" on ids.
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return stringify(float64(s))
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
