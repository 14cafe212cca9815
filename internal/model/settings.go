package model

import (
	"cogentcore.org/core/math32"
)

// Settings is a node's configuration bag. Values are numeric, boolean,
// string, vector, or weighted-list typed; the accessors below coerce the
// common numeric representations so hosts can populate the bag from loosely
// typed sources.
type Settings map[string]any

// Has reports whether the key is present.
func (s Settings) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Float32 returns the numeric value for key, or def when absent or not
// numeric.
func (s Settings) Float32(key string, def float32) float32 {
	switch v := s[key].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	default:
		return def
	}
}

// Int returns the integer value for key, or def when absent or not numeric.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return def
	}
}

// Bool returns the boolean value for key, or def when absent.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string value for key, or def when absent.
func (s Settings) String(key string, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Vec3 returns the vector value for key, or the zero vector when absent.
// Accepts math32.Vector3 or a 3-element float slice.
func (s Settings) Vec3(key string) math32.Vector3 {
	switch v := s[key].(type) {
	case math32.Vector3:
		return v
	case [3]float32:
		return math32.Vec3(v[0], v[1], v[2])
	case []float32:
		if len(v) == 3 {
			return math32.Vec3(v[0], v[1], v[2])
		}
	case []float64:
		if len(v) == 3 {
			return math32.Vec3(float32(v[0]), float32(v[1]), float32(v[2]))
		}
	}
	return math32.Vector3{}
}

// Weighted is one entry of a weighted-choice list setting.
type Weighted struct {
	Name   string
	Weight float32
}

// WeightedList returns the weighted-choice list for key, or nil when absent.
// Accepts []Weighted or a slice of {name, weight} pairs from loosely typed
// sources; a malformed pair invalidates the whole list.
func (s Settings) WeightedList(key string) []Weighted {
	switch v := s[key].(type) {
	case []Weighted:
		return v
	case []any:
		out := make([]Weighted, 0, len(v))
		for _, e := range v {
			pair, ok := e.([]any)
			if !ok || len(pair) != 2 {
				return nil
			}
			name, ok := pair[0].(string)
			if !ok {
				return nil
			}
			w, ok := num32(pair[1])
			if !ok {
				return nil
			}
			out = append(out, Weighted{Name: name, Weight: w})
		}
		return out
	}
	return nil
}

// num32 coerces the common numeric representations to float32.
func num32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	}
	return 0, false
}
