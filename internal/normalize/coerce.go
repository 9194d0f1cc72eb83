package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String renders any decoded JSON value as a trimmed string.
// Strings pass through, nil becomes "", everything else is JSON-encoded.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// Float converts a decoded JSON value into a number. NaN is returned when the
// value is missing or not numeric.
func Float(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Strings converts a decoded JSON value into a list of non-empty strings.
// A scalar becomes a single-element list; nil becomes an empty, non-nil list.
func Strings(v any) []string {
	result := make([]string, 0)

	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := String(item); s != "" {
				result = append(result, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				result = append(result, s)
			}
		}
	default:
		if s := String(val); s != "" {
			result = append(result, s)
		}
	}

	return result
}
