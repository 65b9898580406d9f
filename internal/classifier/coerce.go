package classifier

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotInteger = errors.New("value is not an integer")

// intField reads key as an integer score clamped to [0,100]. A missing key
// yields 0; a present value that can't be read as an integer is an error.
func intField(obj map[string]any, key string) (int, error) {
	v, ok := obj[key]
	if !ok {
		return 0, nil
	}

	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%s: %w", key, errNotInteger)
		}
		return ClampScore(int(n)), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, errNotInteger)
		}
		return ClampScore(i), nil
	default:
		return 0, fmt.Errorf("%s: %w", key, errNotInteger)
	}
}

// boolField reads key as a truth value, defaulting to false.
func boolField(obj map[string]any, key string) bool {
	switch v := obj[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	default:
		return false
	}
}

// stringField reads key as a string, returning fallback when missing or not a string.
func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return fallback
}
