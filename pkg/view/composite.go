package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/metrics"
	"tableflip.dev/chartdesk/pkg/settings"
)

// Shared selector options.
const (
	OptZodiac      = "zodiac"
	OptHouseSystem = "house_system"
	OptLevel       = "level"
)

const (
	optSlide           = "slide"
	optDefaultPlace    = "default_place"
	optDefaultLocation = "default_location"
)

// ErrUnknownChoice is returned when a selector is set to a value it does not
// offer.
var ErrUnknownChoice = errors.New("view: unknown selector choice")

// Selector choices, in display order. The first entry is the default.
var (
	Zodiacs = []settings.Choice{
		{Value: "tropical", Label: "Tropical"},
		{Value: "sidereal", Label: "Sidereal"},
	}
	HouseSystems = []settings.Choice{
		{Value: "placidus", Label: "Placidus"},
		{Value: "koch", Label: "Koch"},
		{Value: "equal", Label: "Equal"},
		{Value: "whole_sign", Label: "Whole sign"},
		{Value: "regiomontanus", Label: "Regiomontanus"},
		{Value: "campanus", Label: "Campanus"},
	}
	Levels = []settings.Choice{
		{Value: "standard", Label: "Standard"},
		{Value: "basic", Label: "Basic"},
		{Value: "full", Label: "Full"},
	}
)

var selectors = []struct {
	option  string
	label   string
	choices []settings.Choice
}{
	{OptZodiac, "Zodiac", Zodiacs},
	{OptHouseSystem, "House system", HouseSystems},
	{OptLevel, "Detail level", Levels},
}

// Choices returns the values a selector offers, or nil for other options.
func Choices(option string) []settings.Choice {
	for _, s := range selectors {
		if s.option == option {
			return s.choices
		}
	}
	return nil
}

type binding struct {
	handler Handler
	docs    []document.Handle
}

// Composite owns the handlers of the chart area and the documents mirrored
// from the current session slot.
type Composite struct {
	bus     Bus
	log     zerolog.Logger
	metrics *metrics.Recorder

	bindings []*binding
	docs     []document.Handle

	selected map[string]string
	slide    int

	defaultPlace    string
	defaultLocation chart.Location
}

var _ settings.Container = (*Composite)(nil)

// NewComposite returns a composite driving handlers, in order. Contained
// handler panics are counted on rec, which may be nil.
func NewComposite(bus Bus, log zerolog.Logger, rec *metrics.Recorder, handlers ...Handler) *Composite {
	c := &Composite{
		bus:      bus,
		log:      log.With().Str("component", "composite").Logger(),
		metrics:  rec,
		selected: map[string]string{},
	}
	for _, s := range selectors {
		c.selected[s.option] = s.choices[0].Value
	}
	c.ApplySettings(c.DefaultSettings())
	for _, h := range handlers {
		c.AddHandler(h)
	}
	return c
}

// AddHandler appends h, pushes the current selectors to it and assigns it
// the current documents.
func (c *Composite) AddHandler(h Handler) {
	b := &binding{handler: h}
	c.bindings = append(c.bindings, b)
	for _, s := range selectors {
		if follows(h, s.option) {
			c.push(h, settings.Values{s.option: c.selected[s.option]})
		}
	}
	c.bind(b, c.docs)
}

// Handlers returns the handlers in order.
func (c *Composite) Handlers() []Handler {
	out := make([]Handler, len(c.bindings))
	for i, b := range c.bindings {
		out[i] = b.handler
	}
	return out
}

// Documents returns the documents currently displayed.
func (c *Composite) Documents() []document.Handle {
	return append([]document.Handle(nil), c.docs...)
}

// SetDocuments points every handler at docs. Only positions whose handle
// changed are re-subscribed and replayed; positions beyond a handler's
// capacity are ignored.
func (c *Composite) SetDocuments(docs []document.Handle) {
	c.docs = append([]document.Handle(nil), docs...)
	for _, b := range c.bindings {
		c.bind(b, c.docs)
	}
}

// Clear empties every handler.
func (c *Composite) Clear() {
	c.SetDocuments(nil)
}

func (c *Composite) bind(b *binding, docs []document.Handle) {
	h := b.handler
	n := h.Capacity()
	next := make([]document.Handle, n)
	for i := offset(h); i < n; i++ {
		next[i] = position(docs, i)
	}

	var changed []int
	for i := 0; i < n; i++ {
		if position(b.docs, i) != next[i] {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return
	}

	for _, old := range b.docs {
		if !old.IsZero() && !contains(next, old) {
			c.bus.Unsubscribe(old, h)
		}
	}
	for i, d := range next {
		if d.IsZero() || contains(b.docs, d) || contains(next[:i], d) {
			continue
		}
		if err := c.bus.Subscribe(d, h); err != nil {
			c.log.Warn().Err(err).Stringer("document", d).Msg("subscribe failed")
			next[i] = document.Handle{}
		}
	}
	b.docs = next
	h.Assign(next)

	for _, i := range changed {
		if d := next[i]; !d.IsZero() {
			c.replay(h, d)
		}
	}
}

func (c *Composite) replay(h Handler, d document.Handle) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error().Stringer("document", d).Interface("panic", rec).Msg("handler fault in replay")
			c.metrics.Fault("changed")
		}
	}()
	h.DocumentChanged(d, chart.All)
}

// push applies v to a single handler. A panicking handler is logged and
// skipped so the remaining handlers still see v.
func (c *Composite) push(h Handler, v settings.Values) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error().Str("handler", fmt.Sprintf("%T", h)).Interface("panic", rec).Msg("handler fault in ApplySettings")
			c.metrics.Fault("apply")
		}
	}()
	h.ApplySettings(v)
}

func contains(docs []document.Handle, d document.Handle) bool {
	for _, x := range docs {
		if x == d {
			return true
		}
	}
	return false
}

// Selector returns the current value of a shared selector.
func (c *Composite) Selector(option string) string {
	return c.selected[option]
}

// SetSelector changes a shared selector and applies it to every handler
// following it.
func (c *Composite) SetSelector(option, value string) error {
	choices := Choices(option)
	if choices == nil {
		return fmt.Errorf("view: unknown selector %q", option)
	}
	if !offers(choices, value) {
		return fmt.Errorf("%w: %s=%q", ErrUnknownChoice, option, value)
	}
	if c.selected[option] == value {
		return nil
	}
	c.selected[option] = value
	c.log.Debug().Str("option", option).Str("value", value).Msg("selector changed")
	for _, b := range c.bindings {
		if follows(b.handler, option) {
			c.push(b.handler, settings.Values{option: value})
		}
	}
	return nil
}

func offers(choices []settings.Choice, value string) bool {
	for _, ch := range choices {
		if ch.Value == value {
			return true
		}
	}
	return false
}

// Slide returns the index of the handler shown in slide mode.
func (c *Composite) Slide() int {
	return c.slide
}

// SetSlide selects the handler shown in slide mode; out of range values are
// clamped.
func (c *Composite) SetSlide(i int) {
	if i >= len(c.bindings) {
		i = len(c.bindings) - 1
	}
	if i < 0 {
		i = 0
	}
	c.slide = i
}

// NewChartData returns a fresh chart seeded with the configured default
// location.
func (c *Composite) NewChartData() chart.Data {
	d := chart.New("")
	d.Place = c.defaultPlace
	d.Location = c.defaultLocation
	return d
}

// SettingsKey implements settings.Customizable.
func (c *Composite) SettingsKey() string { return "astro" }

// DefaultSettings implements settings.Customizable.
func (c *Composite) DefaultSettings() settings.Values {
	v := settings.Values{
		optSlide:           0,
		optDefaultPlace:    "Greenwich",
		optDefaultLocation: FormatLocation(chart.Location{Latitude: 51.4769, Longitude: -0.0005}),
	}
	for _, s := range selectors {
		v[s.option] = s.choices[0].Value
	}
	return v
}

// CurrentSettings implements settings.Customizable.
func (c *Composite) CurrentSettings() settings.Values {
	v := settings.Values{
		optSlide:           c.slide,
		optDefaultPlace:    c.defaultPlace,
		optDefaultLocation: FormatLocation(c.defaultLocation),
	}
	for _, s := range selectors {
		v[s.option] = c.selected[s.option]
	}
	return v
}

// ApplySettings implements settings.Customizable.
func (c *Composite) ApplySettings(v settings.Values) {
	for _, s := range selectors {
		if !v.Has(s.option) {
			continue
		}
		if err := c.SetSelector(s.option, v.String(s.option, "")); err != nil {
			c.log.Warn().Err(err).Msg("ignoring selector value")
		}
	}
	if v.Has(optSlide) {
		c.SetSlide(v.Int(optSlide, 0))
	}
	if v.Has(optDefaultPlace) {
		c.defaultPlace = v.String(optDefaultPlace, "")
	}
	if v.Has(optDefaultLocation) {
		loc, err := ParseLocation(v.String(optDefaultLocation, ""))
		if err != nil {
			c.log.Warn().Err(err).Msg("ignoring default location")
		} else {
			c.defaultLocation = loc
		}
	}
}

// DescribeSettings implements settings.Customizable.
func (c *Composite) DescribeSettings(ed settings.Editor) {
	ed.Group("Chart area")
	for _, s := range selectors {
		ed.Select(s.option, s.label, s.choices)
	}
	ed.Number(optSlide, "Active slide", 0, float64(max(len(c.bindings)-1, 0)))
	ed.Group("New charts")
	ed.Text(optDefaultPlace, "Default place")
	ed.Text(optDefaultLocation, "Default location (lat,lon)")
}

// SettingsChildren implements settings.Container.
func (c *Composite) SettingsChildren() []settings.Customizable {
	out := make([]settings.Customizable, len(c.bindings))
	for i, b := range c.bindings {
		out[i] = b.handler
	}
	return out
}

// FormatLocation renders a location as "lat,lon".
func FormatLocation(l chart.Location) string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// ParseLocation parses the FormatLocation form.
func ParseLocation(raw string) (chart.Location, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return chart.Location{}, fmt.Errorf("view: location %q is not lat,lon", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return chart.Location{}, fmt.Errorf("view: latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return chart.Location{}, fmt.Errorf("view: longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return chart.Location{}, fmt.Errorf("view: location %q out of range", raw)
	}
	return chart.Location{Latitude: lat, Longitude: lon}, nil
}
