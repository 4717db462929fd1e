// Package document owns open chart documents and delivers their change
// notifications. All methods must be called from the control thread.
package document

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/metrics"
)

var (
	// ErrDanglingHandle is returned for handles that are unknown or whose
	// document has been destroyed.
	ErrDanglingHandle = errors.New("document: dangling handle")
	// ErrNoChange is returned when a mutation leaves the data untouched.
	ErrNoChange = errors.New("document: mutation changed nothing")
)

type record struct {
	gen        uint32
	live       bool
	destroying bool

	data   chart.Data
	dirty  bool
	origin string
	refs   int

	observers []Observer
}

func (r *record) subscribed(o Observer) bool {
	for _, existing := range r.observers {
		if existing == o {
			return true
		}
	}
	return false
}

type notification struct {
	handle Handle
	change chart.Members
}

// Bus is the document arena plus its per-document subscription lists.
type Bus struct {
	log     zerolog.Logger
	metrics *metrics.Recorder

	records []*record
	free    []uint32

	dispatching bool
	queue       []notification
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for dispatch tracing and handler faults.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) {
		b.log = l.With().Str("component", "bus").Logger()
	}
}

// WithMetrics sets the recorder for dispatch counters.
func WithMetrics(r *metrics.Recorder) Option {
	return func(b *Bus) {
		b.metrics = r
	}
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Create adds an unsaved document holding data. The document starts with no
// references; it is destroyed once the last Retain is matched by a Release.
func (b *Bus) Create(data chart.Data) Handle {
	return b.insert(data, "")
}

// Open adds a clean document that was loaded from origin.
func (b *Bus) Open(data chart.Data, origin string) Handle {
	return b.insert(data, origin)
}

func (b *Bus) insert(data chart.Data, origin string) Handle {
	var idx uint32
	if n := len(b.free); n > 0 {
		idx = b.free[n-1]
		b.free = b.free[:n-1]
	} else {
		b.records = append(b.records, &record{})
		idx = uint32(len(b.records) - 1)
	}
	r := b.records[idx]
	gen := r.gen + 1
	*r = record{gen: gen, live: true, data: data, origin: origin}
	h := Handle{index: idx, gen: gen}
	b.log.Debug().Stringer("document", h).Str("name", data.Title()).Msg("created")
	return h
}

func (b *Bus) lookup(h Handle) (*record, error) {
	if h.IsZero() || int(h.index) >= len(b.records) {
		return nil, fmt.Errorf("%w: %s", ErrDanglingHandle, h)
	}
	r := b.records[h.index]
	if !r.live || r.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrDanglingHandle, h)
	}
	return r, nil
}

func (b *Bus) writable(h Handle) (*record, error) {
	r, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	if r.destroying {
		return nil, fmt.Errorf("%w: %s is being destroyed", ErrDanglingHandle, h)
	}
	return r, nil
}

// Valid reports whether h still resolves to a live document.
func (b *Bus) Valid(h Handle) bool {
	_, err := b.lookup(h)
	return err == nil
}

// Len returns the number of live documents.
func (b *Bus) Len() int {
	n := 0
	for _, r := range b.records {
		if r.live {
			n++
		}
	}
	return n
}

// Data returns a copy of the document's chart.
func (b *Bus) Data(h Handle) (chart.Data, error) {
	r, err := b.lookup(h)
	if err != nil {
		return chart.Data{}, err
	}
	return r.data, nil
}

// MustData is Data for callers that hold a handle by contract; a dangling
// handle is a programming error and panics.
func (b *Bus) MustData(h Handle) chart.Data {
	d, err := b.Data(h)
	if err != nil {
		panic(err)
	}
	return d
}

// Dirty reports whether the document has unsaved changes.
func (b *Bus) Dirty(h Handle) (bool, error) {
	r, err := b.lookup(h)
	if err != nil {
		return false, err
	}
	return r.dirty, nil
}

// Origin returns the persistence identifier the document was loaded from or
// last saved to; empty for never-saved documents.
func (b *Bus) Origin(h Handle) (string, error) {
	r, err := b.lookup(h)
	if err != nil {
		return "", err
	}
	return r.origin, nil
}

// Refs returns the current reference count.
func (b *Bus) Refs(h Handle) int {
	r, err := b.lookup(h)
	if err != nil {
		return 0
	}
	return r.refs
}

// Subscribers returns how many observers are registered on h.
func (b *Bus) Subscribers(h Handle) int {
	r, err := b.lookup(h)
	if err != nil {
		return 0
	}
	return len(r.observers)
}

// Subscribe registers o for events on h. Subscribing twice has no effect.
func (b *Bus) Subscribe(h Handle, o Observer) error {
	r, err := b.writable(h)
	if err != nil {
		return err
	}
	if r.subscribed(o) {
		return nil
	}
	r.observers = append(r.observers, o)
	return nil
}

// Unsubscribe removes o from h. Unknown observers and handles are ignored.
func (b *Bus) Unsubscribe(h Handle, o Observer) {
	r, err := b.lookup(h)
	if err != nil {
		return
	}
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
			return
		}
	}
}

// Retain adds a reference to h.
func (b *Bus) Retain(h Handle) error {
	r, err := b.writable(h)
	if err != nil {
		return err
	}
	r.refs++
	return nil
}

// Release drops a reference to h. Dropping the last reference destroys the
// document: every remaining observer gets DocumentDestroyed before Release
// returns. It reports whether the document was destroyed.
func (b *Bus) Release(h Handle) (bool, error) {
	r, err := b.writable(h)
	if err != nil {
		return false, err
	}
	r.refs--
	if r.refs > 0 {
		return false, nil
	}
	b.destroy(h, r)
	return true, nil
}

// Mutate applies fn to the document's chart and notifies subscribers with
// members. When members is empty the categories are derived by comparing the
// chart before and after fn. A mutation requested while a notification is
// being delivered is committed immediately but its notification is queued
// behind the one in flight.
func (b *Bus) Mutate(h Handle, members chart.Members, fn func(*chart.Data)) error {
	r, err := b.writable(h)
	if err != nil {
		return err
	}
	next := r.data
	if fn != nil {
		fn(&next)
	}
	change := members
	if change.IsEmpty() {
		change = r.data.Diff(next)
	}
	if change.IsEmpty() {
		return ErrNoChange
	}
	r.data = next
	if !r.dirty {
		r.dirty = true
		change |= chart.State
	}
	b.notify(h, change)
	return nil
}

// Replace swaps the whole chart and notifies with every category set.
func (b *Bus) Replace(h Handle, data chart.Data) error {
	r, err := b.writable(h)
	if err != nil {
		return err
	}
	r.data = data
	r.dirty = true
	b.notify(h, chart.All)
	return nil
}

// MarkSaved clears the dirty flag after a successful save to origin.
func (b *Bus) MarkSaved(h Handle, origin string) error {
	r, err := b.writable(h)
	if err != nil {
		return err
	}
	changed := r.dirty || r.origin != origin
	r.dirty = false
	r.origin = origin
	if changed {
		b.notify(h, chart.State)
	}
	return nil
}

func (b *Bus) notify(h Handle, change chart.Members) {
	b.queue = append(b.queue, notification{handle: h, change: change})
	if b.dispatching {
		return
	}
	b.dispatching = true
	defer func() { b.dispatching = false }()
	for len(b.queue) > 0 {
		n := b.queue[0]
		b.queue = b.queue[1:]
		b.dispatch(n)
	}
}

func (b *Bus) dispatch(n notification) {
	r, err := b.lookup(n.handle)
	if err != nil {
		return
	}
	observers := append([]Observer(nil), r.observers...)
	b.log.Debug().
		Stringer("document", n.handle).
		Stringer("change", n.change).
		Int("observers", len(observers)).
		Msg("dispatch")
	for _, o := range observers {
		if !r.live || r.destroying || r.gen != n.handle.gen {
			return
		}
		if !r.subscribed(o) {
			continue
		}
		b.changed(o, n)
	}
}

func (b *Bus) destroy(h Handle, r *record) {
	r.destroying = true

	pending := b.queue[:0]
	for _, n := range b.queue {
		if n.handle != h {
			pending = append(pending, n)
		}
	}
	b.queue = pending

	observers := append([]Observer(nil), r.observers...)
	for _, o := range observers {
		if !r.subscribed(o) {
			continue
		}
		b.destroyed(o, h)
	}

	b.log.Debug().Stringer("document", h).Int("observers", len(observers)).Msg("destroyed")
	b.metrics.Destroyed()

	*r = record{gen: r.gen}
	b.free = append(b.free, h.index)
}

func (b *Bus) changed(o Observer, n notification) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error().
				Stringer("document", n.handle).
				Stringer("change", n.change).
				Interface("panic", rec).
				Msg("handler fault in DocumentChanged")
			b.metrics.Fault("changed")
		}
	}()
	o.DocumentChanged(n.handle, n.change)
	b.metrics.Notified()
}

func (b *Bus) destroyed(o Observer, h Handle) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error().
				Stringer("document", h).
				Interface("panic", rec).
				Msg("handler fault in DocumentDestroyed")
			b.metrics.Fault("destroyed")
		}
	}()
	o.DocumentDestroyed(h)
}
