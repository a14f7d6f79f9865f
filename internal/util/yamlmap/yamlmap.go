// Package yamlmap decodes loosely typed YAML (or JSON) documents and offers
// accessors for the shapes the jervis configuration files use.
package yamlmap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Map is a decoded YAML mapping with string keys.
type Map map[string]any

// ErrNotMap is returned by Decode when the document root is not a mapping.
var ErrNotMap = errors.New("document root is not a mapping")

// Decode parses data as a single YAML document. JSON input is accepted
// since JSON is a subset of YAML. An empty document decodes to an empty Map.
func Decode(data []byte) (Map, error) {
	var root any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return Map{}, nil
		}
		return nil, err
	}
	if root == nil {
		return Map{}, nil
	}
	m, ok := AsMap(root)
	if !ok {
		return nil, ErrNotMap
	}
	return m, nil
}

// AsMap converts a decoded YAML value to a Map. Non-string keys are
// rendered with fmt so that numeric keys such as version numbers survive.
func AsMap(v any) (Map, bool) {
	switch m := v.(type) {
	case Map:
		return m, true
	case map[string]any:
		return Map(m), true
	case map[any]any:
		out := make(Map, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Map returns the mapping stored under key.
func (m Map) Map(key string) (Map, bool) {
	return AsMap(m[key])
}

// String returns the scalar stored under key. Numbers and booleans are
// rendered as YAML would print them, so `rvm: 2.7` reads as "2.7".
func (m Map) String(key string) (string, bool) {
	return Scalar(m[key])
}

// StringList returns the list of scalars stored under key.
func (m Map) StringList(key string) ([]string, bool) {
	return ScalarList(m[key])
}

// StringOrList accepts either a scalar or a list of scalars under key.
func (m Map) StringOrList(key string) ([]string, bool) {
	if s, ok := m.String(key); ok {
		return []string{s}, true
	}
	return m.StringList(key)
}

// Scalar converts a decoded scalar to its string form.
func Scalar(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(s), true
	}
	return "", false
}

// ScalarList converts a decoded sequence of scalars.
func ScalarList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := Scalar(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
