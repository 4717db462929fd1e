package view

import (
	"fmt"
	"time"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/settings"
)

const optShowAge = "show_age"

const infoMembers = chart.Name | chart.KindOf | chart.Time | chart.Timezone | chart.Place | chart.PlaceName

// Info is the chart info panel for one document position.
type Info struct {
	bus      document.Reader
	key      string
	position int
	now      func() time.Time

	doc     document.Handle
	showAge bool
	lines   []string
	renders int
}

var _ Handler = (*Info)(nil)

// NewInfo returns the info panel for the primary document.
func NewInfo(bus document.Reader) *Info {
	return &Info{bus: bus, key: "info", showAge: true, now: time.Now}
}

// NewSecondaryInfo returns the info panel for the comparison document.
func NewSecondaryInfo(bus document.Reader) *Info {
	return &Info{bus: bus, key: "info_secondary", position: 1, showAge: true, now: time.Now}
}

// Document returns the handle being displayed, zero when empty.
func (i *Info) Document() document.Handle { return i.doc }

// Lines returns the rendered panel.
func (i *Info) Lines() []string { return append([]string(nil), i.lines...) }

// Renders counts how often the panel was rebuilt.
func (i *Info) Renders() int { return i.renders }

// Capacity implements Handler.
func (i *Info) Capacity() int { return i.position + 1 }

// Offset implements Offsetter.
func (i *Info) Offset() int { return i.position }

// Assign implements Handler.
func (i *Info) Assign(docs []document.Handle) {
	i.doc = position(docs, i.position)
	if i.doc.IsZero() {
		i.lines = nil
	}
}

// DocumentChanged implements document.Observer.
func (i *Info) DocumentChanged(h document.Handle, change chart.Members) {
	if h != i.doc || !change.Any(infoMembers) {
		return
	}
	i.render()
}

// DocumentDestroyed implements document.Observer.
func (i *Info) DocumentDestroyed(h document.Handle) {
	if h == i.doc {
		i.doc = document.Handle{}
		i.lines = nil
	}
}

func (i *Info) render() {
	d, err := i.bus.Data(i.doc)
	if err != nil {
		i.lines = nil
		return
	}
	i.renders++
	lines := []string{
		d.Title(),
		d.LocalTime().Format("2006-01-02 15:04 MST"),
	}
	if d.Place != "" {
		lines = append(lines, d.Place)
	}
	if !d.Location.IsZero() {
		lines = append(lines, d.Location.String())
	}
	if d.Type != "" && d.Type != chart.TypeUndefined {
		lines = append(lines, string(d.Type))
	}
	if i.showAge && d.Type != chart.TypeEvent {
		lines = append(lines, fmt.Sprintf("Age: %d", d.Age(i.now())))
	}
	i.lines = lines
}

// SettingsKey implements settings.Customizable.
func (i *Info) SettingsKey() string { return i.key }

// DefaultSettings implements settings.Customizable.
func (i *Info) DefaultSettings() settings.Values {
	return settings.Values{optShowAge: true}
}

// CurrentSettings implements settings.Customizable.
func (i *Info) CurrentSettings() settings.Values {
	return settings.Values{optShowAge: i.showAge}
}

// ApplySettings implements settings.Customizable.
func (i *Info) ApplySettings(v settings.Values) {
	if !v.Has(optShowAge) {
		return
	}
	show := v.Bool(optShowAge, true)
	if show == i.showAge {
		return
	}
	i.showAge = show
	if !i.doc.IsZero() {
		i.render()
	}
}

// DescribeSettings implements settings.Customizable.
func (i *Info) DescribeSettings(ed settings.Editor) {
	ed.Toggle(optShowAge, "Show age")
}
