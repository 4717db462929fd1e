package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/view"
)

type dir string

func (d dir) BasePath() string { return string(d) }

func newTestController(t *testing.T, names ...string) *controller {
	t.Helper()
	ctx := zerolog.Nop().WithContext(context.Background())
	p, err := store.Load(dir(t.TempDir()))
	require.NoError(t, err)
	for _, n := range names {
		_, err := p.Save(ctx, "", chart.New(n))
		require.NoError(t, err)
	}
	ws := app.New(app.Options{Persistence: p, AskToSave: true, Logger: zerolog.Nop()})
	require.NoError(t, ws.Database.Refresh(ctx))
	return newController(ctx, ws)
}

func TestOpenAndTabs(t *testing.T) {
	c := newTestController(t, "Alice", "Bob")
	assert.Equal(t, " no charts open", c.tabs())

	c.request(database.ActionOpen, store.IDFor("Alice"))
	c.request(database.ActionOpenInNewTab, store.IDFor("Bob"))
	assert.Equal(t, " 1 Alice  [2 Bob]", c.tabs())

	c.nextTab()
	assert.Equal(t, "[1 Alice]  2 Bob ", c.tabs())
}

func TestMoveTab(t *testing.T) {
	c := newTestController(t)
	c.request(database.ActionOpen, store.IDFor("Alice"))
	c.request(database.ActionOpenInNewTab, store.IDFor("Bob"))

	c.moveTab(-1)
	assert.Equal(t, "[1 Bob]  2 Alice ", c.tabs())

	c.moveTab(-1)
	assert.Equal(t, "[1 Bob]  2 Alice ", c.tabs(), "first tab stays put")

	c.moveTab(1)
	assert.Equal(t, " 1 Alice  [2 Bob]", c.tabs())
}

func TestNothingSelected(t *testing.T) {
	c := newTestController(t)
	c.request(database.ActionOpen, "")
	assert.Equal(t, "no chart selected", c.status)
}

func TestCloseDirtyAsksThenDiscards(t *testing.T) {
	c := newTestController(t)
	c.newChart("Draft")
	require.NoError(t, c.ws.Edit(chart.None, func(d *chart.Data) { d.Place = "Oslo" }))

	c.closeCurrent()
	assert.True(t, c.asking())
	assert.Contains(t, c.status, `"Draft" has unsaved changes`)
	assert.Equal(t, 1, c.ws.Session.Len())

	c.answer(false)
	assert.False(t, c.asking())
	assert.Equal(t, 1, c.ws.Session.Len())

	c.closeCurrent()
	c.answer(true)
	assert.Equal(t, 0, c.ws.Session.Len())
	assert.Equal(t, 0, c.ws.Bus.Len())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	c := newTestController(t, "Alice")
	id := store.IDFor("Alice")

	c.request(database.ActionDelete, id)
	assert.True(t, c.asking())
	assert.Len(t, c.ws.Database.Items(), 1)

	c.answer(true)
	assert.Empty(t, c.ws.Database.Items())
	_, err := c.ws.Persistence.Load(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompareWithItself(t *testing.T) {
	c := newTestController(t, "Alice")
	id := store.IDFor("Alice")

	c.request(database.ActionOpenAsSecondary, id)
	assert.Equal(t, "open a chart first", c.status)

	c.request(database.ActionOpen, id)
	c.request(database.ActionOpenAsSecondary, id)
	assert.Equal(t, "a chart cannot be compared with itself", c.status)
	assert.Equal(t, 1, c.ws.Bus.Len())
}

func TestCycleSelector(t *testing.T) {
	c := newTestController(t)
	c.cycle(view.OptZodiac)
	assert.Equal(t, "sidereal", c.ws.Composite.Selector(view.OptZodiac))
	c.cycle(view.OptZodiac)
	assert.Equal(t, "tropical", c.ws.Composite.Selector(view.OptZodiac))

	c.cycle(view.OptLevel)
	_, _, level := c.ws.Chart.Options()
	assert.Equal(t, "basic", level)
	assert.Contains(t, c.selectors(), "detail: basic")
}

func TestSaveMarksClean(t *testing.T) {
	c := newTestController(t)
	c.save()
	assert.Equal(t, "nothing to save", c.status)

	c.newChart("Nova")
	assert.Equal(t, "[1 Nova]", c.tabs())
	require.NoError(t, c.ws.Edit(chart.None, func(d *chart.Data) { d.Comment = "first light" }))
	assert.Equal(t, "[1 Nova*]", c.tabs())
	c.save()
	assert.Equal(t, "saved", c.status)
	assert.Equal(t, "[1 Nova]", c.tabs())
}

func TestLongTabLabelsAreTruncated(t *testing.T) {
	c := newTestController(t)
	c.newChart("Augusta Ada King, Countess of Lovelace")
	tabs := c.tabs()
	assert.True(t, strings.HasSuffix(tabs, "…]"), tabs)
	assert.Less(t, len([]rune(tabs)), 40)
}
