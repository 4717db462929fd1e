package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/settings"
	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/view"
)

func newPrinter() (*PrettyPrint, *bytes.Buffer) {
	color.NoColor = true
	buf := &bytes.Buffer{}
	return &PrettyPrint{Out: buf}, buf
}

func TestCharts(t *testing.T) {
	pp, buf := newPrinter()
	pp.ShowID = true
	pp.Charts(
		store.Summary{ID: store.IDFor("Alice"), Name: "Alice", Type: chart.TypeFemale},
		store.Summary{ID: store.IDFor("Bob"), Name: "Bob", Type: chart.TypeMale},
	)
	out := buf.String()
	assert.Contains(t, out, "Charts - 2 charts")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "female")
	assert.Contains(t, out, store.IDFor("Bob"))
}

func TestChartsEmpty(t *testing.T) {
	pp, buf := newPrinter()
	pp.Charts()
	assert.Contains(t, buf.String(), "none")
}

func TestDetails(t *testing.T) {
	pp, buf := newPrinter()
	pp.Details([]view.Row{{Field: "Name", Value: "Alice"}, {Field: "Place", Value: "Oslo"}})
	assert.Contains(t, buf.String(), "Oslo")
}

func TestReport(t *testing.T) {
	pp, buf := newPrinter()
	pp.Report(app.ReportResult{
		Documents: 2,
		Dirty:     1,
		Slots: []app.ReportSlot{{
			Current:   true,
			Primary:   app.ReportChart{Data: chart.Data{Name: "Alice"}, Dirty: true, Refs: 1},
			Secondary: &app.ReportChart{Data: chart.Data{Name: "Bob"}, Refs: 2},
		}},
	})
	out := buf.String()
	assert.Contains(t, out, "Alice*")
	assert.Contains(t, out, "Bob (x2)")
	assert.Contains(t, out, "2 open, 1 unsaved")
}

func TestReportCounters(t *testing.T) {
	pp, buf := newPrinter()
	pp.Report(app.ReportResult{Metrics: map[string]float64{
		"chartdesk_documents_destroyed_total":              3,
		`chartdesk_handler_faults_total{callback="apply"}`: 1,
	}})
	out := buf.String()
	assert.Contains(t, out, "Counters")
	assert.Contains(t, out, `chartdesk_handler_faults_total{callback="apply"}`)
	assert.Less(t, strings.Index(out, "documents_destroyed"), strings.Index(out, "handler_faults"))
}

func TestSettings(t *testing.T) {
	pp, buf := newPrinter()
	pp.Settings(settings.Snapshot{
		"window":       {"open": []string{"a", "b"}, "reopen": true},
		"window.astro": {"zodiac": "tropical"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "window.open")
	assert.Contains(t, lines[0], "[a, b]")
	assert.Contains(t, lines[2], "window.astro.zodiac")
}

func TestForm(t *testing.T) {
	pp, buf := newPrinter()
	form := &settings.Form{}
	form.Group("Chart")
	form.Select("window.astro.zodiac", "Zodiac", []settings.Choice{{Value: "tropical"}, {Value: "sidereal"}})
	form.Number("window.astro.chart.orb", "Orb", 0, 15)
	pp.Form(form, settings.Snapshot{"window.astro": {"zodiac": "sidereal"}})
	out := buf.String()
	assert.Contains(t, out, "Chart")
	assert.Contains(t, out, "tropical|sidereal")
	assert.Contains(t, out, "0..15")
	assert.Contains(t, out, "sidereal")
}

func TestCalendarYearPrintsEveryMonth(t *testing.T) {
	pp, buf := newPrinter()
	pp.CalendarYear(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local))
	out := buf.String()
	for m := time.January; m <= time.December; m++ {
		assert.Contains(t, out, m.String())
	}
	assert.Less(t, strings.Index(out, "January"), strings.Index(out, "December"))
}

func TestCalendarHighlightsSavedDays(t *testing.T) {
	pp, buf := newPrinter()
	on := time.Date(2024, time.February, 10, 12, 0, 0, 0, time.Local)
	pp.Calendar(on, store.Summary{Name: "Alice", Saved: on})
	out := buf.String()
	assert.Contains(t, out, "February")
	assert.Contains(t, out, "29")
	assert.Equal(t, 29, DaysIn(on))
	assert.Equal(t, time.Thursday, StartDay(on))
}
