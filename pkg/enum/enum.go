package enum

import (
	"fmt"
	"reflect"
)

// registry maps each enum type to its registered string values. Keying by
// reflect.Type keeps same-named types from different packages apart.
var registry = map[reflect.Type]map[string]any{}

// New registers a value of a string-backed enum type and returns it, so enum
// values double as their own declarations.
func New[T ~string](value T) T {
	t := reflect.TypeOf(value)
	if registry[t] == nil {
		registry[t] = map[string]any{}
	}

	registry[t][string(value)] = value
	return value
}

// ToEnum parses a string into a previously registered value of T.
func ToEnum[T ~string](s string) (T, error) {
	var zero T
	if value, ok := registry[reflect.TypeOf(zero)][s].(T); ok {
		return value, nil
	}

	return zero, fmt.Errorf("invalid %T value %q", zero, s)
}
