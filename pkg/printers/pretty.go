package printers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/settings"
	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/view"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

const maxColWidth = 60

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintf(pp.out(), " %s\n", noun)
	default:
		_, _ = c.Fprintf(pp.out(), " %ss\n", noun)
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxColWidth
	tbl.Wrap = true
	return tbl
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

// Charts lists stored charts.
func (pp *PrettyPrint) Charts(charts ...store.Summary) {
	pp.TitleWithCount("Charts", len(charts), "chart")
	if len(charts) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	header := []interface{}{bold("Name"), bold("Type"), bold("Saved")}
	if pp.ShowID {
		header = append([]interface{}{bold("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, c := range charts {
		saved := ""
		if !c.Saved.IsZero() {
			saved = c.Saved.Local().Format("2006-01-02 15:04")
		}
		row := []interface{}{c.Name, string(c.Type), saved}
		if pp.ShowID {
			row = append([]interface{}{faint(c.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Info prints the header lines of the info panel.
func (pp *PrettyPrint) Info(lines []string) {
	if len(lines) == 0 {
		pp.none()
		return
	}
	_, _ = color.New(color.Bold).Fprintln(pp.out(), lines[0])
	for _, l := range lines[1:] {
		_, _ = fmt.Fprintln(pp.out(), l)
	}
	pp.NewLine()
}

// Details prints the field table of the details panel.
func (pp *PrettyPrint) Details(rows []view.Row) {
	if len(rows) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, r := range rows {
		tbl.AddRow(faint(r.Field), r.Value)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Report prints the open slots and their documents.
func (pp *PrettyPrint) Report(r app.ReportResult) {
	pp.TitleWithCount("Session", len(r.Slots), "slot")
	if len(r.Slots) == 0 {
		pp.none()
		pp.Counters(r.Metrics)
		return
	}
	tbl := pp.table()
	tbl.AddRow("", bold("Tab"), bold("Primary"), bold("Secondary"), bold("State"))
	for i, s := range r.Slots {
		marker := " "
		if s.Current {
			marker = "▸"
		}
		secondary := ""
		if s.Secondary != nil {
			secondary = describe(*s.Secondary)
		}
		tbl.AddRow(marker, fmt.Sprintf("%d", i+1), describe(s.Primary), secondary, s.Slot.State.String())
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = color.New(color.Faint).Fprintf(pp.out(), "%d open, %d unsaved\n\n", r.Documents, r.Dirty)
	pp.Counters(r.Metrics)
}

// Counters prints metric series in name order.
func (pp *PrettyPrint) Counters(counts map[string]float64) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	pp.Title("Counters")
	tbl := pp.table()
	for _, n := range names {
		tbl.AddRow(faint(n), fmt.Sprintf("%g", counts[n]))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func describe(c app.ReportChart) string {
	s := c.Data.Title()
	if c.Dirty {
		s += "*"
	}
	if c.Refs > 1 {
		s += fmt.Sprintf(" (x%d)", c.Refs)
	}
	return s
}

// Settings prints every option of snap as path.option = value.
func (pp *PrettyPrint) Settings(snap settings.Snapshot) {
	tbl := pp.table()
	for _, path := range snap.Paths() {
		vals := snap[path]
		for _, opt := range vals.Keys() {
			tbl.AddRow(settings.JoinKey(path, opt), "=", format(vals[opt]))
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Form prints the editable options grouped as the components describe
// them, with their current values.
func (pp *PrettyPrint) Form(form *settings.Form, snap settings.Snapshot) {
	group := "\x00"
	var tbl *uitable.Table
	flush := func() {
		if tbl != nil {
			_, _ = fmt.Fprintln(pp.out(), tbl)
			pp.NewLine()
		}
	}
	for _, f := range form.Fields {
		if f.Group != group {
			flush()
			group = f.Group
			pp.Title(group)
			tbl = pp.table()
		}
		current, _ := snap.Get(f.Key)
		tbl.AddRow(f.Label, faint(f.Key), format(current), faint(allowed(f)))
	}
	flush()
}

func allowed(f settings.Field) string {
	switch f.Kind {
	case settings.KindToggle:
		return "true|false"
	case settings.KindSelect:
		vals := make([]string, 0, len(f.Choices))
		for _, c := range f.Choices {
			vals = append(vals, c.Value)
		}
		return strings.Join(vals, "|")
	case settings.KindNumber:
		return fmt.Sprintf("%g..%g", f.Min, f.Max)
	}
	return string(f.Kind)
}

func format(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
