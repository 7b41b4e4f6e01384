package gen

import (
	"math"
)

func isNonFinite(f float64) bool {
	return math.IsInf(f, 0) || math.IsNaN(f)
}

func finite(f *float64) *float64 {
	if f != nil && isNonFinite(*f) {
		return nil
	}
	return f
}

func finiteValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok && isNonFinite(f) {
		return nil
	}
	return v
}

// finiteValues drops non-finite numbers from an enum list.
func finiteValues(values []interface{}) []interface{} {
	if len(values) == 0 {
		return values
	}
	valid := make([]interface{}, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok && isNonFinite(f) {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}
