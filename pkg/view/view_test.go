package view

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/metrics"
	"tableflip.dev/chartdesk/pkg/settings"
)

type fixture struct {
	bus       *document.Bus
	info      *Info
	secondary *Info
	chart     *Chart
	details   *Details
	composite *Composite
}

func newFixture() *fixture {
	bus := document.NewBus()
	f := &fixture{
		bus:       bus,
		info:      NewInfo(bus),
		secondary: NewSecondaryInfo(bus),
		chart:     NewChart(bus),
		details:   NewDetails(bus),
	}
	f.composite = NewComposite(bus, zerolog.Nop(), nil, f.info, f.secondary, f.chart, f.details)
	return f
}

func natal(name string) chart.Data {
	return chart.Data{
		Name:      name,
		Type:      chart.TypeFemale,
		Timestamp: time.Date(1990, time.June, 15, 12, 30, 0, 0, time.UTC),
		Timezone:  2,
		Location:  chart.Location{Latitude: 48.85, Longitude: 2.35},
		Place:     "Paris",
	}
}

func TestSetDocumentsReplaysAll(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))

	f.composite.SetDocuments([]document.Handle{p})

	assert.Equal(t, 1, f.info.Renders())
	assert.Equal(t, "Primary", f.info.Lines()[0])
	assert.Equal(t, 0, f.secondary.Renders())
	assert.Equal(t, 1, f.chart.Revision(0))
	require.NotEmpty(t, f.details.Rows())
	assert.Equal(t, Row{"Name", "Primary"}, f.details.Rows()[0])
	assert.Equal(t, 3, f.bus.Subscribers(p), "secondary info only watches position 1")
}

func TestOpenAsSecondaryOnlyTouchesComparisonHandlers(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	d := f.bus.Create(natal("Second"))
	f.composite.SetDocuments([]document.Handle{p})

	f.composite.SetDocuments([]document.Handle{p, d})

	assert.Equal(t, 1, f.info.Renders(), "primary info untouched")
	assert.Equal(t, 1, f.secondary.Renders())
	assert.Equal(t, "Second", f.secondary.Lines()[0])
	assert.Equal(t, 1, f.chart.Revision(0), "primary position not replayed")
	assert.Equal(t, 1, f.chart.Revision(1))
	assert.Equal(t, 2, f.bus.Subscribers(d))
}

func TestMutationReachesHandlersOfThatDocument(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	d := f.bus.Create(natal("Second"))
	f.composite.SetDocuments([]document.Handle{p, d})

	require.NoError(t, f.bus.Mutate(d, chart.None, func(c *chart.Data) { c.Name = "Renamed" }))

	assert.Equal(t, 1, f.info.Renders())
	assert.Equal(t, 2, f.secondary.Renders())
	assert.Equal(t, "Renamed", f.secondary.Lines()[0])
	assert.Equal(t, 1, f.chart.Revision(0))
	assert.Equal(t, 2, f.chart.Revision(1))
}

func TestCommentChangeSkipsChartRedraw(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	f.composite.SetDocuments([]document.Handle{p})
	require.NoError(t, f.composite.SetSelector(OptLevel, "full"))

	require.NoError(t, f.bus.Mutate(p, chart.Comment, func(c *chart.Data) { c.Comment = "rectified" }))

	assert.Equal(t, 1, f.info.Renders())
	assert.Contains(t, f.details.Rows(), Row{"Comment", "rectified"})
}

func TestClearUnsubscribes(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	f.composite.SetDocuments([]document.Handle{p})

	f.composite.Clear()

	assert.Equal(t, 0, f.bus.Subscribers(p))
	assert.Nil(t, f.info.Lines())
	assert.Nil(t, f.details.Rows())
}

func TestDestroyEmptiesHandlers(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	require.NoError(t, f.bus.Retain(p))
	f.composite.SetDocuments([]document.Handle{p})

	destroyed, err := f.bus.Release(p)
	require.NoError(t, err)
	require.True(t, destroyed)

	assert.True(t, f.info.Document().IsZero())
	assert.Nil(t, f.info.Lines())
	primary, _ := f.chart.Documents()
	assert.True(t, primary.IsZero())
	assert.Nil(t, f.details.Rows())

	f.composite.Clear()
}

func TestSelectorBroadcast(t *testing.T) {
	f := newFixture()
	p := f.bus.Create(natal("Primary"))
	f.composite.SetDocuments([]document.Handle{p})

	zodiac, houses, _ := f.chart.Options()
	assert.Equal(t, "tropical", zodiac)
	assert.Equal(t, "placidus", houses)

	require.NoError(t, f.composite.SetSelector(OptZodiac, "sidereal"))
	zodiac, _, _ = f.chart.Options()
	assert.Equal(t, "sidereal", zodiac)
	assert.Equal(t, 2, f.chart.Revision(0))
	assert.Equal(t, 1, f.info.Renders())

	require.NoError(t, f.composite.SetSelector(OptLevel, "basic"))
	assert.Len(t, f.details.Rows(), 3)

	assert.ErrorIs(t, f.composite.SetSelector(OptZodiac, "draconic"), ErrUnknownChoice)
	assert.Error(t, f.composite.SetSelector("colour", "red"))
}

func TestCompositeSettingsRoundTrip(t *testing.T) {
	f := newFixture()
	agg := settings.NewAggregator()

	snap, err := agg.BuildSnapshot(f.composite)
	require.NoError(t, err)
	assert.Equal(t, []string{"astro", "astro.chart", "astro.details", "astro.info", "astro.info_secondary"}, snap.Paths())
	assert.NotContains(t, snap["astro.chart"], OptZodiac)

	snap["astro"][OptHouseSystem] = "koch"
	snap["astro.info"][optShowAge] = false
	require.NoError(t, agg.ApplySnapshot(f.composite, snap))

	_, houses, _ := f.chart.Options()
	assert.Equal(t, "koch", houses)
	assert.False(t, f.info.CurrentSettings().Bool(optShowAge, true))

	again, err := agg.BuildSnapshot(f.composite)
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestDescribeSettings(t *testing.T) {
	f := newFixture()
	form := &settings.Form{}
	require.NoError(t, settings.NewAggregator().DescribeEditor(f.composite, form))

	field, ok := form.Field("astro.zodiac")
	require.True(t, ok)
	assert.Equal(t, settings.KindSelect, field.Kind)
	assert.Len(t, field.Choices, len(Zodiacs))

	_, ok = form.Field("astro.info_secondary.show_age")
	assert.True(t, ok)
}

func TestNewChartDataUsesDefaultLocation(t *testing.T) {
	f := newFixture()
	d := f.composite.NewChartData()
	assert.Equal(t, "Greenwich", d.Place)
	assert.Equal(t, 51.4769, d.Location.Latitude)

	f.composite.ApplySettings(settings.Values{optDefaultLocation: "-33.87,151.21", optDefaultPlace: "Sydney"})
	d = f.composite.NewChartData()
	assert.Equal(t, "Sydney", d.Place)
	assert.Equal(t, -33.87, d.Location.Latitude)
	assert.Equal(t, 151.21, d.Location.Longitude)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation(" 10.5 , -20 ")
	require.NoError(t, err)
	assert.Equal(t, chart.Location{Latitude: 10.5, Longitude: -20}, loc)
	assert.Equal(t, "10.5,-20", FormatLocation(loc))

	for _, raw := range []string{"", "1", "a,b", "91,0", "0,181"} {
		_, err := ParseLocation(raw)
		assert.Error(t, err, raw)
	}
}

func TestSlideClamps(t *testing.T) {
	f := newFixture()
	f.composite.SetSlide(10)
	assert.Equal(t, 3, f.composite.Slide())
	f.composite.SetSlide(-1)
	assert.Equal(t, 0, f.composite.Slide())
}

type panickyFollower struct{ applied int }

func (p *panickyFollower) DocumentChanged(document.Handle, chart.Members) {}
func (p *panickyFollower) DocumentDestroyed(document.Handle)              {}
func (p *panickyFollower) SettingsKey() string                            { return "panicky" }
func (p *panickyFollower) DefaultSettings() settings.Values               { return settings.Values{} }
func (p *panickyFollower) CurrentSettings() settings.Values               { return settings.Values{} }
func (p *panickyFollower) DescribeSettings(settings.Editor)               {}
func (p *panickyFollower) Capacity() int                                  { return 1 }
func (p *panickyFollower) Assign([]document.Handle)                       {}
func (p *panickyFollower) Follows() []string                              { return []string{OptLevel} }

func (p *panickyFollower) ApplySettings(settings.Values) {
	p.applied++
	panic("boom")
}

func TestFollowerFaultDoesNotStopLaterHandlers(t *testing.T) {
	bus := document.NewBus()
	rec := metrics.New(prometheus.NewRegistry())
	bad := &panickyFollower{}
	details := NewDetails(bus)

	var c *Composite
	require.NotPanics(t, func() {
		c = NewComposite(bus, zerolog.Nop(), rec, bad, details)
	})
	assert.Equal(t, 1, bad.applied)

	require.NotPanics(t, func() {
		require.NoError(t, c.SetSelector(OptLevel, "full"))
	})
	assert.Equal(t, "full", c.Selector(OptLevel))
	assert.Equal(t, "full", details.level)

	err := settings.NewAggregator().ApplySnapshot(c, settings.Snapshot{
		"astro": {OptLevel: "basic", optDefaultPlace: "Oslo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "basic", details.level)
	assert.Equal(t, "Oslo", c.NewChartData().Place)
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.Faults().WithLabelValues("apply")))
}

func TestSecondaryInfoOnlyWatchesComparison(t *testing.T) {
	bus := document.NewBus()
	secondary := NewSecondaryInfo(bus)
	p := bus.Create(natal("Primary"))
	d := bus.Create(natal("Second"))

	NewComposite(bus, zerolog.Nop(), nil, secondary).SetDocuments([]document.Handle{p, d})

	assert.Equal(t, "Second", secondary.Lines()[0])
	assert.Equal(t, 0, bus.Subscribers(p))
	assert.Equal(t, 1, bus.Subscribers(d))
}
