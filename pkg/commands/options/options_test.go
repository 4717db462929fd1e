package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/store"
)

func TestChartOptionsApply(t *testing.T) {
	data := chart.Data{Name: "Alice", Type: chart.TypeUndefined}
	o := &ChartOptions{
		Time:     "1990-04-12 06:30",
		Timezone: "+02:00",
		Location: "59.91,10.75",
		Place:    "Oslo",
		Type:     "female",
	}
	changed, err := o.Apply(&data)
	require.NoError(t, err)

	assert.Equal(t, time.Date(1990, time.April, 12, 4, 30, 0, 0, time.UTC), data.Timestamp)
	assert.Equal(t, 2.0, data.Timezone)
	assert.Equal(t, 59.91, data.Location.Latitude)
	assert.Equal(t, chart.TypeFemale, data.Type)
	assert.Equal(t, chart.Time|chart.Timezone|chart.Place|chart.PlaceName|chart.KindOf, changed)
	assert.Equal(t, "Alice", data.Name)
}

func TestChartOptionsApplyRejects(t *testing.T) {
	for _, o := range []ChartOptions{
		{Time: "soon"},
		{Timezone: "+20"},
		{Location: "north"},
		{Type: "planet"},
	} {
		data := chart.Data{}
		_, err := o.Apply(&data)
		assert.Error(t, err, "%+v", o)
	}
}

func TestListOptionsKeep(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	charts := []store.Summary{
		{Name: "old", Saved: now.Add(-10 * 24 * time.Hour)},
		{Name: "new", Saved: now.Add(-time.Hour)},
	}

	all, err := (&ListOptions{}).Keep(now, charts)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	recent, err := (&ListOptions{Since: "3d"}).Keep(now, charts)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Name)

	_, err = (&ListOptions{Since: "soon"}).Keep(now, charts)
	assert.Error(t, err)
}
