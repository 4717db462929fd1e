package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/chartdesk/pkg/chart"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func TestSaveLoadList(t *testing.T) {
	ctx := context.Background()
	p, err := Load(testConfig{path: t.TempDir()})
	require.NoError(t, err)

	zed := chart.New("zed")
	zed.Type = chart.TypeEvent
	alpha := chart.New("Alpha")
	alpha.Location = chart.Location{Latitude: 1, Longitude: 2}

	zedID, err := p.Save(ctx, "", zed)
	require.NoError(t, err)
	alphaID, err := p.Save(ctx, "", alpha)
	require.NoError(t, err)
	assert.Equal(t, IDFor("Alpha"), alphaID)

	got, err := p.Load(ctx, alphaID)
	require.NoError(t, err)
	assert.Equal(t, alpha.Name, got.Name)
	assert.Equal(t, alpha.Location, got.Location)
	assert.True(t, alpha.Timestamp.Equal(got.Timestamp))

	list, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, zedID, list[1].ID)
	assert.Equal(t, chart.TypeEvent, list[1].Type)
	assert.False(t, list[1].Saved.IsZero())
}

func TestSaveRenameMovesChart(t *testing.T) {
	ctx := context.Background()
	p, err := Load(testConfig{path: t.TempDir()})
	require.NoError(t, err)

	d := chart.New("Before")
	id, err := p.Save(ctx, "", d)
	require.NoError(t, err)

	d.Name = "After"
	next, err := p.Save(ctx, id, d)
	require.NoError(t, err)
	assert.NotEqual(t, id, next)

	_, err = p.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "After", list[0].Name)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	p, err := Load(testConfig{path: t.TempDir()})
	require.NoError(t, err)

	id, err := p.Save(ctx, "", chart.New("Gone"))
	require.NoError(t, err)
	require.NoError(t, p.Delete(ctx, id))
	assert.ErrorIs(t, p.Delete(ctx, id), ErrNotFound)
	_, err = p.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Save(ctx, "", chart.New("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Load(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIDRoundTrip(t *testing.T) {
	for _, name := range []string{"Alpha", "a-b/c d", "Ünïcode"} {
		id := IDFor(name)
		assert.NotContains(t, id, "/")
		got, err := NameFor(id)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
	_, err := NameFor("!!")
	assert.Error(t, err)
}

func TestLoadRequiresBasePath(t *testing.T) {
	_, err := Load(testConfig{})
	assert.Error(t, err)
}

func TestSavedTimestampUsesClock(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	require.NoError(t, err)
	fixed := time.Date(2020, 1, 2, 3, 4, 0, 0, time.UTC)
	p.(*persistence).now = func() time.Time { return fixed }

	_, err = p.Save(context.Background(), "", chart.New("Clock"))
	require.NoError(t, err)
	list, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, fixed.Equal(list[0].Saved))
}
