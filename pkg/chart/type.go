package chart

import (
	"fmt"
	"strings"
)

// Type identifies what a chart describes.
type Type string

const (
	// TypeUndefined is the default for new charts.
	TypeUndefined Type = "undefined"
	// TypeMale is a natal chart of a man.
	TypeMale Type = "male"
	// TypeFemale is a natal chart of a woman.
	TypeFemale Type = "female"
	// TypeEvent is an event chart.
	TypeEvent Type = "event"
)

// AllTypes returns the list of supported chart types.
func AllTypes() []Type {
	return []Type{
		TypeUndefined,
		TypeMale,
		TypeFemale,
		TypeEvent,
	}
}

// ParseType converts a string to a Type or returns an error for unknown values.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeUndefined, nil
	}
	for _, candidate := range AllTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return TypeUndefined, fmt.Errorf("chart: unknown type %q", raw)
}
