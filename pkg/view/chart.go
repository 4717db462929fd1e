package view

import (
	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/settings"
)

const (
	optAspects = "aspects"
	optOrb     = "orb"
)

// redrawMembers are the categories that move anything on the chart surface.
const redrawMembers = chart.Name | chart.KindOf | chart.Time | chart.Timezone | chart.Place

// Chart stands in for the chart surface. It tracks the calculation options
// and counts redraws per displayed document; it can show a second chart for
// comparison.
type Chart struct {
	bus document.Reader

	docs      [2]document.Handle
	revisions [2]int

	zodiac  string
	houses  string
	level   string
	aspects bool
	orb     float64
}

var (
	_ Handler  = (*Chart)(nil)
	_ Follower = (*Chart)(nil)
)

// NewChart returns an empty chart surface.
func NewChart(bus document.Reader) *Chart {
	return &Chart{bus: bus, aspects: true, orb: 8}
}

// Capacity implements Handler.
func (c *Chart) Capacity() int { return 2 }

// Follows implements Follower.
func (c *Chart) Follows() []string {
	return []string{OptZodiac, OptHouseSystem, OptLevel}
}

// Documents returns the primary and secondary handles.
func (c *Chart) Documents() (primary, secondary document.Handle) {
	return c.docs[0], c.docs[1]
}

// Revision returns how often position i has been redrawn.
func (c *Chart) Revision(i int) int { return c.revisions[i] }

// Options returns the calculation options in effect.
func (c *Chart) Options() (zodiac, houses, level string) {
	return c.zodiac, c.houses, c.level
}

// Assign implements Handler.
func (c *Chart) Assign(docs []document.Handle) {
	for i := range c.docs {
		c.docs[i] = position(docs, i)
	}
}

// DocumentChanged implements document.Observer.
func (c *Chart) DocumentChanged(h document.Handle, change chart.Members) {
	if !change.Any(redrawMembers) {
		return
	}
	for i, d := range c.docs {
		if d == h {
			c.redraw(i)
		}
	}
}

// DocumentDestroyed implements document.Observer.
func (c *Chart) DocumentDestroyed(h document.Handle) {
	for i, d := range c.docs {
		if d == h {
			c.docs[i] = document.Handle{}
		}
	}
}

func (c *Chart) redraw(i int) {
	if _, err := c.bus.Data(c.docs[i]); err != nil {
		c.docs[i] = document.Handle{}
		return
	}
	c.revisions[i]++
}

func (c *Chart) redrawAll() {
	for i, d := range c.docs {
		if !d.IsZero() {
			c.redraw(i)
		}
	}
}

// SettingsKey implements settings.Customizable.
func (c *Chart) SettingsKey() string { return "chart" }

// DefaultSettings implements settings.Customizable.
func (c *Chart) DefaultSettings() settings.Values {
	return settings.Values{optAspects: true, optOrb: 8.0}
}

// CurrentSettings implements settings.Customizable.
func (c *Chart) CurrentSettings() settings.Values {
	return settings.Values{optAspects: c.aspects, optOrb: c.orb}
}

// ApplySettings implements settings.Customizable. It also receives the
// followed selectors from the composite.
func (c *Chart) ApplySettings(v settings.Values) {
	changed := false
	set := func(dst *string, key string) {
		if v.Has(key) {
			if s := v.String(key, *dst); s != *dst {
				*dst = s
				changed = true
			}
		}
	}
	set(&c.zodiac, OptZodiac)
	set(&c.houses, OptHouseSystem)
	set(&c.level, OptLevel)
	if v.Has(optAspects) {
		if b := v.Bool(optAspects, c.aspects); b != c.aspects {
			c.aspects = b
			changed = true
		}
	}
	if v.Has(optOrb) {
		if f := v.Float(optOrb, c.orb); f != c.orb {
			c.orb = f
			changed = true
		}
	}
	if changed {
		c.redrawAll()
	}
}

// DescribeSettings implements settings.Customizable.
func (c *Chart) DescribeSettings(ed settings.Editor) {
	ed.Group("Chart")
	ed.Toggle(optAspects, "Draw aspects")
	ed.Number(optOrb, "Aspect orb", 0, 15)
}
