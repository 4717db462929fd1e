package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffReportsChangedCategories(t *testing.T) {
	base := Data{
		Name:      "Ada",
		Timestamp: time.Date(1815, time.December, 10, 12, 0, 0, 0, time.UTC),
		Location:  Location{Latitude: 51.5, Longitude: -0.12},
	}

	moved := base
	moved.Location.Latitude = 48.85
	moved.Place = "Paris"
	assert.Equal(t, Place|PlaceName, base.Diff(moved))

	renamed := base
	renamed.Name = "Ada Lovelace"
	assert.Equal(t, Name, base.Diff(renamed))

	assert.Equal(t, None, base.Diff(base))
}

func TestMembersStringRoundTrip(t *testing.T) {
	for _, m := range []Members{None, All, Name, Name | Time, Place | PlaceName | Comment} {
		parsed, err := ParseMembers(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed, "members %s", m)
	}
}

func TestParseMembersRejectsUnknown(t *testing.T) {
	_, err := ParseMembers("name,houses")
	require.Error(t, err)
}

func TestMembersHas(t *testing.T) {
	m := Name | Time
	assert.True(t, m.Has(Name))
	assert.True(t, m.Has(Name|Time))
	assert.False(t, m.Has(Name|Place))
	assert.False(t, m.Has(None))
	assert.True(t, m.Any(Place|Time))
	assert.Equal(t, 2, m.Len())
}

func TestAge(t *testing.T) {
	d := Data{Timestamp: time.Date(1990, time.June, 15, 8, 30, 0, 0, time.UTC)}

	assert.Equal(t, 34, d.Age(time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, d.Age(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, d.Age(time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLocalTime(t *testing.T) {
	d := Data{
		Timestamp: time.Date(2020, time.March, 1, 10, 0, 0, 0, time.UTC),
		Timezone:  5.5,
	}
	local := d.LocalTime()
	assert.Equal(t, 15, local.Hour())
	assert.Equal(t, 30, local.Minute())
	name, _ := local.Zone()
	assert.Equal(t, "UTC+05:30", name)
}

func TestTitleFallsBack(t *testing.T) {
	assert.Equal(t, DefaultName, Data{}.Title())
	assert.Equal(t, "Ada", Data{Name: " Ada "}.Title())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Event")
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, typ)

	typ, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeUndefined, typ)

	_, err = ParseType("planet")
	assert.Error(t, err)
}
