package view

import (
	"fmt"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/settings"
)

const optShowComment = "show_comment"

// Row is one line of the details table.
type Row struct {
	Field string
	Value string
}

// Details lists the fields of the primary document. The detail level
// selector decides how many fields are listed.
type Details struct {
	bus document.Reader

	doc         document.Handle
	level       string
	showComment bool
	rows        []Row
}

var (
	_ Handler  = (*Details)(nil)
	_ Follower = (*Details)(nil)
)

// NewDetails returns an empty details table.
func NewDetails(bus document.Reader) *Details {
	return &Details{bus: bus, level: Levels[0].Value, showComment: true}
}

// Rows returns the current table.
func (d *Details) Rows() []Row { return append([]Row(nil), d.rows...) }

// Capacity implements Handler.
func (d *Details) Capacity() int { return 1 }

// Follows implements Follower.
func (d *Details) Follows() []string { return []string{OptLevel} }

// Assign implements Handler.
func (d *Details) Assign(docs []document.Handle) {
	d.doc = position(docs, 0)
	if d.doc.IsZero() {
		d.rows = nil
	}
}

// DocumentChanged implements document.Observer. Every category is listed,
// so every change refreshes the table.
func (d *Details) DocumentChanged(h document.Handle, _ chart.Members) {
	if h == d.doc {
		d.refresh()
	}
}

// DocumentDestroyed implements document.Observer.
func (d *Details) DocumentDestroyed(h document.Handle) {
	if h == d.doc {
		d.doc = document.Handle{}
		d.rows = nil
	}
}

func (d *Details) refresh() {
	if d.doc.IsZero() {
		d.rows = nil
		return
	}
	data, err := d.bus.Data(d.doc)
	if err != nil {
		d.rows = nil
		return
	}
	rows := []Row{
		{"Name", data.Title()},
		{"Time", data.LocalTime().Format("2006-01-02 15:04")},
		{"Place", data.Place},
	}
	if d.level != "basic" {
		rows = append(rows,
			Row{"Type", string(data.Type)},
			Row{"Timezone", fmt.Sprintf("%+.2f", data.Timezone)},
			Row{"Location", data.Location.String()},
		)
	}
	if d.level == "full" {
		if d.showComment {
			rows = append(rows, Row{"Comment", data.Comment})
		}
		dirty, _ := d.bus.Dirty(d.doc)
		origin, _ := d.bus.Origin(d.doc)
		rows = append(rows,
			Row{"Modified", fmt.Sprintf("%t", dirty)},
			Row{"Stored as", origin},
		)
	}
	d.rows = rows
}

// SettingsKey implements settings.Customizable.
func (d *Details) SettingsKey() string { return "details" }

// DefaultSettings implements settings.Customizable.
func (d *Details) DefaultSettings() settings.Values {
	return settings.Values{optShowComment: true}
}

// CurrentSettings implements settings.Customizable.
func (d *Details) CurrentSettings() settings.Values {
	return settings.Values{optShowComment: d.showComment}
}

// ApplySettings implements settings.Customizable.
func (d *Details) ApplySettings(v settings.Values) {
	if v.Has(OptLevel) {
		d.level = v.String(OptLevel, d.level)
	}
	if v.Has(optShowComment) {
		d.showComment = v.Bool(optShowComment, d.showComment)
	}
	d.refresh()
}

// DescribeSettings implements settings.Customizable.
func (d *Details) DescribeSettings(ed settings.Editor) {
	ed.Group("Details")
	ed.Toggle(optShowComment, "Show comment")
}
