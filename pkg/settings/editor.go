package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	// ErrUnknownField is returned by Form.Set for keys no component declared.
	ErrUnknownField = errors.New("settings: unknown field")
	// ErrInvalidValue is returned by Form.Set when the raw value does not fit
	// the field.
	ErrInvalidValue = errors.New("settings: invalid value")
)

// Choice is one entry of a Select field.
type Choice struct {
	Value string
	Label string
}

// Editor receives the description of editable options.
type Editor interface {
	Group(title string)
	Toggle(key, label string)
	Select(key, label string, choices []Choice)
	Number(key, label string, min, max float64)
	Text(key, label string)
}

// Kind is the widget type of a Field.
type Kind string

const (
	KindToggle Kind = "toggle"
	KindSelect Kind = "select"
	KindNumber Kind = "number"
	KindText   Kind = "text"
)

// Field is one recorded editor entry.
type Field struct {
	Key     string
	Label   string
	Group   string
	Kind    Kind
	Choices []Choice
	Min     float64
	Max     float64
}

// Component returns the dotted path of the component owning the field.
func (f Field) Component() string {
	path, _ := SplitKey(f.Key)
	return path
}

// Option returns the option name within its component.
func (f Field) Option() string {
	_, opt := SplitKey(f.Key)
	return opt
}

// Form is an Editor that records every field, in description order.
type Form struct {
	Fields []Field
	group  string
}

var _ Editor = (*Form)(nil)

func (f *Form) Group(title string) { f.group = title }

func (f *Form) Toggle(key, label string) {
	f.Fields = append(f.Fields, Field{Key: key, Label: label, Group: f.group, Kind: KindToggle})
}

func (f *Form) Select(key, label string, choices []Choice) {
	f.Fields = append(f.Fields, Field{
		Key:     key,
		Label:   label,
		Group:   f.group,
		Kind:    KindSelect,
		Choices: append([]Choice(nil), choices...),
	})
}

func (f *Form) Number(key, label string, min, max float64) {
	f.Fields = append(f.Fields, Field{Key: key, Label: label, Group: f.group, Kind: KindNumber, Min: min, Max: max})
}

func (f *Form) Text(key, label string) {
	f.Fields = append(f.Fields, Field{Key: key, Label: label, Group: f.group, Kind: KindText})
}

// Field looks up a recorded field by its full key.
func (f *Form) Field(key string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Set parses raw for the field at key and returns a copy of snap carrying
// the new value.
func (f *Form) Set(snap Snapshot, key, raw string) (Snapshot, error) {
	field, ok := f.Field(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	value, err := field.Parse(raw)
	if err != nil {
		return nil, err
	}
	out := snap.Clone()
	if out == nil {
		out = Snapshot{}
	}
	out.Set(key, value)
	return out, nil
}

// Parse converts raw into the value type of the field.
func (f Field) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindToggle:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants true or false, got %q", ErrInvalidValue, f.Key, raw)
		}
		return b, nil
	case KindSelect:
		for _, c := range f.Choices {
			if c.Value == raw {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%w: %s does not offer %q", ErrInvalidValue, f.Key, raw)
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants a number, got %q", ErrInvalidValue, f.Key, raw)
		}
		if n < f.Min || n > f.Max {
			return nil, fmt.Errorf("%w: %s must be within [%g, %g]", ErrInvalidValue, f.Key, f.Min, f.Max)
		}
		if i, err := strconv.Atoi(raw); err == nil {
			return i, nil
		}
		return n, nil
	}
	return raw, nil
}
