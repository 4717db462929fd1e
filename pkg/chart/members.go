package chart

import (
	"fmt"
	"math/bits"
	"strings"
)

// Members is a set of chart field categories. A mutation always carries the
// non-empty set of categories it touched.
type Members uint32

const (
	// Name is the chart's display name.
	Name Members = 1 << iota
	// KindOf is the chart type (male, female, event).
	KindOf
	// Time is the UTC timestamp.
	Time
	// Timezone is the local offset from UTC.
	Timezone
	// Place is the geographic coordinate triple.
	Place
	// PlaceName is the human-readable location name.
	PlaceName
	// Comment is free-form notes.
	Comment
	// State is the dirty/saved status of the document holding the chart.
	State

	// None is the empty set.
	None Members = 0
	// All is every category; used for bulk replacement and initial loads.
	All = Name | KindOf | Time | Timezone | Place | PlaceName | Comment | State
)

var memberNames = []struct {
	m    Members
	name string
}{
	{Name, "name"},
	{KindOf, "type"},
	{Time, "time"},
	{Timezone, "timezone"},
	{Place, "location"},
	{PlaceName, "place"},
	{Comment, "comment"},
	{State, "state"},
}

// Has reports whether every category in o is present in m.
func (m Members) Has(o Members) bool {
	return o != 0 && m&o == o
}

// Any reports whether m and o share at least one category.
func (m Members) Any(o Members) bool {
	return m&o != 0
}

// IsEmpty reports whether no category is set.
func (m Members) IsEmpty() bool {
	return m == 0
}

// Len returns the number of categories set.
func (m Members) Len() int {
	return bits.OnesCount32(uint32(m))
}

// String renders the set as "name|time", "all" or "none".
func (m Members) String() string {
	switch m {
	case None:
		return "none"
	case All:
		return "all"
	}
	parts := make([]string, 0, m.Len())
	for _, n := range memberNames {
		if m&n.m != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMembers parses the String form. Separators may be '|' or ','.
func ParseMembers(raw string) (Members, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "", "none":
		return None, nil
	case "all":
		return All, nil
	}
	var m Members
	for _, field := range strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == ',' }) {
		field = strings.TrimSpace(field)
		found := false
		for _, n := range memberNames {
			if n.name == field {
				m |= n.m
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("chart: unknown field category %q", field)
		}
	}
	return m, nil
}
