package settings

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Values maps option names to values for a single component. Values read back
// from a settings file are loosely typed, so reads go through the typed
// accessors below.
type Values map[string]any

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// String returns key as a string, or fallback when absent or not coercible.
func (v Values) String(key, fallback string) string {
	if raw, ok := v[key]; ok {
		if s, err := cast.ToStringE(raw); err == nil {
			return s
		}
	}
	return fallback
}

// Bool returns key as a bool, or fallback.
func (v Values) Bool(key string, fallback bool) bool {
	if raw, ok := v[key]; ok {
		if b, err := cast.ToBoolE(raw); err == nil {
			return b
		}
	}
	return fallback
}

// Int returns key as an int, or fallback.
func (v Values) Int(key string, fallback int) int {
	if raw, ok := v[key]; ok {
		if i, err := cast.ToIntE(raw); err == nil {
			return i
		}
	}
	return fallback
}

// Float returns key as a float64, or fallback.
func (v Values) Float(key string, fallback float64) float64 {
	if raw, ok := v[key]; ok {
		if f, err := cast.ToFloat64E(raw); err == nil {
			return f
		}
	}
	return fallback
}

// Strings returns key as a string list, or nil.
func (v Values) Strings(key string) []string {
	if raw, ok := v[key]; ok {
		if s, err := cast.ToStringSliceE(raw); err == nil {
			return s
		}
	}
	return nil
}

// Keys returns the option names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Snapshot maps a dotted component path (window.astro.info) to that
// component's values.
type Snapshot map[string]Values

// Paths returns the component paths in sorted order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone deep-copies the snapshot down to the value level.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for p, v := range s {
		out[p] = v.Clone()
	}
	return out
}

// Get returns the value at a full dotted key (path + "." + option).
func (s Snapshot) Get(key string) (any, bool) {
	path, option := SplitKey(key)
	vals, ok := s[path]
	if !ok {
		return nil, false
	}
	v, ok := vals[option]
	return v, ok
}

// Set stores value at a full dotted key, creating the component entry.
func (s Snapshot) Set(key string, value any) {
	path, option := SplitKey(key)
	if s[path] == nil {
		s[path] = Values{}
	}
	s[path][option] = value
}

// JoinKey joins a component path and an option or child key.
func JoinKey(path, key string) string {
	switch {
	case path == "":
		return key
	case key == "":
		return path
	}
	return path + "." + key
}

// SplitKey splits a full dotted key into component path and option name.
func SplitKey(key string) (path, option string) {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}
