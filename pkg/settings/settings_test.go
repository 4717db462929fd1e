package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/chartdesk/pkg/metrics"
)

type node struct {
	key      string
	defaults Values
	current  Values
	children []Customizable
	applied  int
	panics   bool
}

func newNode(key string, defaults Values, children ...Customizable) *node {
	return &node{key: key, defaults: defaults, current: defaults.Clone(), children: children}
}

func (n *node) SettingsKey() string              { return n.key }
func (n *node) DefaultSettings() Values          { return n.defaults.Clone() }
func (n *node) CurrentSettings() Values          { return n.current.Clone() }
func (n *node) SettingsChildren() []Customizable { return n.children }

func (n *node) ApplySettings(v Values) {
	if n.panics {
		panic("apply failed")
	}
	n.applied++
	for k, val := range v {
		n.current[k] = val
	}
}

func (n *node) DescribeSettings(ed Editor) {
	for _, k := range n.defaults.Keys() {
		switch n.defaults[k].(type) {
		case bool:
			ed.Toggle(k, k)
		case int:
			ed.Number(k, k, 0, 10)
		default:
			ed.Text(k, k)
		}
	}
}

func tree() (*node, *node, *node) {
	info := newNode("info", Values{"show_age": true})
	chart := newNode("chart", Values{"zoom": 1, "theme": "light"})
	root := newNode("window", Values{"ask_to_save": true}, newNode("astro", Values{"slide": 0}, info, chart))
	return root, info, chart
}

func TestBuildSnapshotPaths(t *testing.T) {
	root, _, _ := tree()
	snap, err := NewAggregator().BuildSnapshot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"window", "window.astro", "window.astro.chart", "window.astro.info"}, snap.Paths())
	v, ok := snap.Get("window.astro.chart.theme")
	require.True(t, ok)
	assert.Equal(t, "light", v)
}

func TestApplyBuiltSnapshotIsIdempotent(t *testing.T) {
	root, info, chart := tree()
	info.current["show_age"] = false
	chart.current["zoom"] = 4

	agg := NewAggregator()
	before, err := agg.BuildSnapshot(root)
	require.NoError(t, err)
	require.NoError(t, agg.ApplySnapshot(root, before))
	after, err := agg.BuildSnapshot(root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyPartialSnapshotFallsBackToDefaults(t *testing.T) {
	root, info, chart := tree()
	info.current["show_age"] = false
	chart.current["theme"] = "dark"

	err := NewAggregator().ApplySnapshot(root, Snapshot{
		"window.astro.chart": {"zoom": 3, "obsolete": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, info.current["show_age"])
	assert.Equal(t, 3, chart.current["zoom"])
	assert.Equal(t, "light", chart.current["theme"])
	assert.NotContains(t, chart.current, "obsolete")
}

func TestKeyCollision(t *testing.T) {
	a := newNode("dup", Values{"x": 1})
	b := newNode("dup", Values{"x": 2})
	root := newNode("window", nil, a, b)

	_, err := NewAggregator().BuildSnapshot(root)
	assert.ErrorIs(t, err, ErrKeyCollision)

	snap, err := NewAggregator(Lenient()).BuildSnapshot(root)
	require.NoError(t, err)
	assert.Equal(t, 2, snap["window.dup"]["x"])
}

func TestApplyFaultIsContained(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	root, info, chart := tree()
	info.panics = true

	err := NewAggregator(WithMetrics(rec)).ApplySnapshot(root, Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 1, chart.applied)
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.AppliedCounter()))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Faults().WithLabelValues("apply")))
}

func TestDescribeEditorQualifiesKeys(t *testing.T) {
	root, _, _ := tree()
	form := &Form{}
	require.NoError(t, NewAggregator().DescribeEditor(root, form))

	field, ok := form.Field("window.astro.chart.zoom")
	require.True(t, ok)
	assert.Equal(t, KindNumber, field.Kind)
	assert.Equal(t, "window.astro.chart", field.Component())
	assert.Equal(t, "zoom", field.Option())
}

func TestFormSet(t *testing.T) {
	form := &Form{}
	form.Toggle("window.ask_to_save", "Ask to save")
	form.Select("window.astro.zodiac", "Zodiac", []Choice{{Value: "tropical"}, {Value: "sidereal"}})
	form.Number("window.astro.level", "Level", 0, 3)

	snap := Snapshot{"window": {"ask_to_save": true}}
	next, err := form.Set(snap, "window.ask_to_save", "false")
	require.NoError(t, err)
	assert.Equal(t, false, next["window"]["ask_to_save"])
	assert.Equal(t, true, snap["window"]["ask_to_save"], "input untouched")

	next, err = form.Set(next, "window.astro.level", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, next["window.astro"]["level"])

	_, err = form.Set(next, "window.astro.level", "9")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = form.Set(next, "window.astro.zodiac", "draconic")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = form.Set(next, "window.nope", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestValuesAccessors(t *testing.T) {
	v := Values{"n": "3", "f": 1, "b": "true", "s": 7}
	assert.Equal(t, 3, v.Int("n", 0))
	assert.Equal(t, 1.0, v.Float("f", 0))
	assert.True(t, v.Bool("b", false))
	assert.Equal(t, "7", v.String("s", ""))
	assert.Equal(t, "fallback", v.String("missing", "fallback"))
	assert.Equal(t, 5, Values{"n": "five"}.Int("n", 5))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	f := NewFile(path)

	empty, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	snap := Snapshot{
		"window":             {"ask_to_save": false},
		"window.astro":       {"zodiac": "sidereal", "level": 2},
		"window.astro.chart": {"zoom": 1.5},
	}
	require.NoError(t, f.Save(snap))
	_, err = os.Stat(path)
	require.NoError(t, err)

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Paths(), got.Paths())
	assert.False(t, got["window"].Bool("ask_to_save", true))
	assert.Equal(t, "sidereal", got["window.astro"].String("zodiac", ""))
	assert.Equal(t, 2, got["window.astro"].Int("level", 0))
	assert.Equal(t, 1.5, got["window.astro.chart"].Float("zoom", 0))
}

func TestEncodeTOML(t *testing.T) {
	out, err := EncodeTOML(Snapshot{
		"window":       {"ask_to_save": true},
		"window.astro": {"zodiac": "tropical"},
	})
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.Contains(text, "[window]"), text)
	assert.True(t, strings.Contains(text, "ask_to_save = true"), text)
	assert.True(t, strings.Contains(text, "[window.astro]"), text)
	assert.True(t, strings.Contains(text, "tropical"), text)
}
