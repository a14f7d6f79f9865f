// Package normalization maps loosely written configuration strings onto
// closed sets of enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer resolves raw strings to values of T. Lookups ignore case,
// surrounding whitespace and the choice of separator, so "lifecycles_spec",
// "Lifecycles-Spec" and "lifecycles spec" resolve identically.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewNormalizer creates a normalizer for the enum called name. The keys in
// values are canonicalized with Canonical.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := Canonical(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}

	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum type, returning the default value when
// raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.validValues[Canonical(raw)]; ok {
		return value
	}
	return n.defaultValue
}

// Parse converts raw to the enum type and reports unrecognized input.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if value, ok := n.validValues[Canonical(raw)]; ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// IsValid reports whether raw resolves to a known value.
func (n *Normalizer[T]) IsValid(raw string) bool {
	_, ok := n.validValues[Canonical(raw)]
	return ok
}

// ValidKeys returns all canonical keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

// Canonical lowercases s, trims it and folds '_' and ' ' into '-'.
func Canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', ' ':
			return '-'
		}
		return r
	}, s)
}
