// Package settings composes per-component configuration into one snapshot
// and redistributes edited snapshots back to the components.
//
// Components form a tree. Every node contributes its values under its own
// dotted path; siblings must use distinct keys. The aggregator walks the tree
// depth first, parents before children, for every operation.
package settings

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/metrics"
)

// ErrKeyCollision is returned in strict mode when two siblings share a key.
var ErrKeyCollision = errors.New("settings: key collision")

// Customizable is the settings side of every view component.
type Customizable interface {
	// SettingsKey names the component's namespace among its siblings.
	SettingsKey() string
	// DefaultSettings returns the values used when nothing was configured.
	DefaultSettings() Values
	// CurrentSettings returns the values in effect now.
	CurrentSettings() Values
	// ApplySettings applies every option present in values. Options missing
	// from values are left as they are.
	ApplySettings(values Values)
	// DescribeSettings lists the editable options.
	DescribeSettings(ed Editor)
}

// Container is a Customizable with child components.
type Container interface {
	Customizable
	SettingsChildren() []Customizable
}

// Aggregator walks a Customizable tree.
type Aggregator struct {
	log     zerolog.Logger
	metrics *metrics.Recorder
	strict  bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for collisions and contained faults.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.log = l.With().Str("component", "settings").Logger()
	}
}

// WithMetrics sets the recorder counting ApplySettings deliveries.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Aggregator) {
		a.metrics = r
	}
}

// Lenient turns key collisions into warnings; the later sibling wins.
func Lenient() Option {
	return func(a *Aggregator) {
		a.strict = false
	}
}

// NewAggregator returns a strict aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{log: zerolog.Nop(), strict: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type visitFunc func(path string, node Customizable) error

func (a *Aggregator) walk(node Customizable, prefix string, visit visitFunc) error {
	path := JoinKey(prefix, node.SettingsKey())
	if err := visit(path, node); err != nil {
		return err
	}
	c, ok := node.(Container)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, child := range c.SettingsChildren() {
		if child == nil {
			continue
		}
		key := child.SettingsKey()
		if _, dup := seen[key]; dup {
			err := fmt.Errorf("%w: %q under %q", ErrKeyCollision, key, path)
			if a.strict {
				return err
			}
			a.log.Warn().Err(err).Msg("last write wins")
		}
		seen[key] = struct{}{}
		if err := a.walk(child, path, visit); err != nil {
			return err
		}
	}
	return nil
}

// BuildSnapshot collects every node's CurrentSettings.
func (a *Aggregator) BuildSnapshot(root Customizable) (Snapshot, error) {
	snap := Snapshot{}
	err := a.walk(root, "", func(path string, node Customizable) error {
		if vals := node.CurrentSettings(); len(vals) > 0 {
			snap[path] = vals.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Defaults collects every node's DefaultSettings.
func (a *Aggregator) Defaults(root Customizable) (Snapshot, error) {
	snap := Snapshot{}
	err := a.walk(root, "", func(path string, node Customizable) error {
		if vals := node.DefaultSettings(); len(vals) > 0 {
			snap[path] = vals.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ApplySnapshot hands each node its sub-snapshot. Options the snapshot does
// not carry are taken from the node's defaults; options the node does not
// declare are dropped. A node that panics while applying is skipped.
func (a *Aggregator) ApplySnapshot(root Customizable, snap Snapshot) error {
	return a.walk(root, "", func(path string, node Customizable) error {
		defaults := node.DefaultSettings()
		if len(defaults) == 0 {
			return nil
		}
		merged := defaults.Clone()
		for key, value := range snap[path] {
			if _, known := defaults[key]; !known {
				a.log.Debug().Str("path", path).Str("option", key).Msg("dropping unknown option")
				continue
			}
			merged[key] = value
		}
		a.apply(path, node, merged)
		return nil
	})
}

func (a *Aggregator) apply(path string, node Customizable, values Values) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Error().Str("path", path).Interface("panic", rec).Msg("handler fault in ApplySettings")
			a.metrics.Fault("apply")
		}
	}()
	node.ApplySettings(values)
	a.metrics.Applied()
}

// DescribeEditor lets every node describe its options to ed. Keys reaching
// ed are fully qualified (path + "." + option).
func (a *Aggregator) DescribeEditor(root Customizable, ed Editor) error {
	return a.walk(root, "", func(path string, node Customizable) error {
		node.DescribeSettings(&scopedEditor{path: path, next: ed})
		return nil
	})
}

type scopedEditor struct {
	path string
	next Editor
}

func (s *scopedEditor) Group(title string) { s.next.Group(title) }

func (s *scopedEditor) Toggle(key, label string) {
	s.next.Toggle(JoinKey(s.path, key), label)
}

func (s *scopedEditor) Select(key, label string, choices []Choice) {
	s.next.Select(JoinKey(s.path, key), label, choices)
}

func (s *scopedEditor) Number(key, label string, min, max float64) {
	s.next.Number(JoinKey(s.path, key), label, min, max)
}

func (s *scopedEditor) Text(key, label string) {
	s.next.Text(JoinKey(s.path, key), label)
}
