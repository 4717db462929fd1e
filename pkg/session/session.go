// Package session keeps the ordered list of open slots (tabs). Each slot
// holds a primary document and an optional comparison document; the session
// holds one document reference per position and mirrors the current slot
// into the chart area.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
)

var (
	// ErrUnsavedChanges is matched by *UnsavedChangesError.
	ErrUnsavedChanges = errors.New("session: unsaved changes")
	// ErrSelfComparison is returned when a slot's primary document is opened
	// as its own comparison document.
	ErrSelfComparison = errors.New("session: document cannot be compared with itself")
	// ErrNoSlot is returned for out of range indices or when no slot is open.
	ErrNoSlot = errors.New("session: no such slot")
)

// UnsavedChangesError names the dirty document that blocked an operation.
type UnsavedChangesError struct {
	Slot     int
	Document document.Handle
	Title    string
}

func (e *UnsavedChangesError) Error() string {
	return fmt.Sprintf("session: %q in slot %d has unsaved changes", e.Title, e.Slot)
}

// Is makes errors.Is(err, ErrUnsavedChanges) hold.
func (e *UnsavedChangesError) Is(target error) bool {
	return target == ErrUnsavedChanges
}

// Resolution tells an operation what to do with unsaved changes it would
// discard.
type Resolution int

const (
	// Ask fails with *UnsavedChangesError when ask-to-save is on.
	Ask Resolution = iota
	// Discard drops the changes.
	Discard
)

// Bus is the part of document.Bus the session uses.
type Bus interface {
	document.Reader
	Retain(h document.Handle) error
	Release(h document.Handle) (bool, error)
	Refs(h document.Handle) int
	Subscribe(h document.Handle, o document.Observer) error
	Unsubscribe(h document.Handle, o document.Observer)
}

// Mirror receives the current slot's documents whenever they change.
type Mirror interface {
	SetDocuments(docs []document.Handle)
}

type slot struct {
	id        uuid.UUID
	state     State
	primary   document.Handle
	secondary document.Handle
}

func (s *slot) holds(h document.Handle) bool {
	return s.primary == h || (!s.secondary.IsZero() && s.secondary == h)
}

func (s *slot) docs() []document.Handle {
	if s.primary.IsZero() {
		return nil
	}
	if s.secondary.IsZero() {
		return []document.Handle{s.primary}
	}
	return []document.Handle{s.primary, s.secondary}
}

type listener struct {
	id int
	fn Listener
}

// Session is the slot list. It must only be used from the control thread.
type Session struct {
	bus       Bus
	log       zerolog.Logger
	view      Mirror
	askToSave bool

	slots   []*slot
	current int

	listeners []listener
	nextID    int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l.With().Str("component", "session").Logger()
	}
}

// WithView sets the view mirroring the current slot.
func WithView(m Mirror) Option {
	return func(s *Session) {
		s.view = m
	}
}

// New returns an empty session with ask-to-save on.
func New(bus Bus, opts ...Option) *Session {
	s := &Session{bus: bus, log: zerolog.Nop(), askToSave: true, current: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAskToSave toggles the unsaved changes check.
func (s *Session) SetAskToSave(ask bool) {
	s.askToSave = ask
}

// AskToSave reports whether the unsaved changes check is on.
func (s *Session) AskToSave() bool {
	return s.askToSave
}

// Listen registers fn for session events. The returned func removes it.
func (s *Session) Listen(fn Listener) func() {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(t EventType, sl *slot) {
	ev := Event{Type: t, Active: s.activeID()}
	if sl != nil {
		ev.Slot = s.snapshot(sl)
	}
	s.log.Debug().Str("event", string(t)).Str("slot", ev.Slot.ID.String()).Str("label", ev.Slot.Label).Msg("session event")
	for _, l := range append([]listener(nil), s.listeners...) {
		l.fn(ev)
	}
}

func (s *Session) activeID() uuid.UUID {
	if s.current < 0 {
		return uuid.Nil
	}
	return s.slots[s.current].id
}

func (s *Session) mirror() {
	if s.view == nil {
		return
	}
	s.view.SetDocuments(s.CurrentDocuments())
}

// Len returns the number of slots.
func (s *Session) Len() int {
	return len(s.slots)
}

// Current returns the index of the current slot, or -1 when empty.
func (s *Session) Current() int {
	return s.current
}

// CurrentDocuments returns the current slot's documents, primary first.
func (s *Session) CurrentDocuments() []document.Handle {
	if s.current < 0 {
		return nil
	}
	return s.slots[s.current].docs()
}

// Slots returns a snapshot of every slot in order.
func (s *Session) Slots() []SlotSnapshot {
	out := make([]SlotSnapshot, len(s.slots))
	for i, sl := range s.slots {
		out[i] = s.snapshot(sl)
	}
	return out
}

// Slot returns a snapshot of slot i.
func (s *Session) Slot(i int) (SlotSnapshot, error) {
	if err := s.check(i); err != nil {
		return SlotSnapshot{}, err
	}
	return s.snapshot(s.slots[i]), nil
}

func (s *Session) snapshot(sl *slot) SlotSnapshot {
	snap := SlotSnapshot{
		ID:        sl.id,
		Index:     s.indexOf(sl),
		State:     sl.state,
		Primary:   sl.primary,
		Secondary: sl.secondary,
	}
	snap.Label, snap.Dirty = s.label(sl)
	return snap
}

func (s *Session) indexOf(sl *slot) int {
	for i, x := range s.slots {
		if x == sl {
			return i
		}
	}
	return -1
}

// label renders "Name*" or "Name* | Other" for a slot.
func (s *Session) label(sl *slot) (string, bool) {
	if sl.primary.IsZero() {
		return "", false
	}
	var b strings.Builder
	title := chart.DefaultName
	if d, err := s.bus.Data(sl.primary); err == nil {
		title = d.Title()
	}
	b.WriteString(title)
	dirty, _ := s.bus.Dirty(sl.primary)
	if dirty {
		b.WriteString("*")
	}
	if !sl.secondary.IsZero() {
		if d, err := s.bus.Data(sl.secondary); err == nil {
			b.WriteString(" | ")
			b.WriteString(d.Title())
		}
	}
	return b.String(), dirty
}

// Label returns the tab label of slot i.
func (s *Session) Label(i int) string {
	if s.check(i) != nil {
		return ""
	}
	l, _ := s.label(s.slots[i])
	return l
}

// Find returns the index of the first slot whose primary document was loaded
// from origin, or -1.
func (s *Session) Find(origin string) int {
	if origin == "" {
		return -1
	}
	for i, sl := range s.slots {
		if o, err := s.bus.Origin(sl.primary); err == nil && o == origin {
			return i
		}
	}
	return -1
}

func (s *Session) check(i int) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d", ErrNoSlot, i)
	}
	return nil
}

// take adds a reference to h held by the session.
func (s *Session) take(h document.Handle) error {
	if err := s.bus.Retain(h); err != nil {
		return err
	}
	return s.bus.Subscribe(h, s)
}

// drop releases one session reference to h. Once no slot refers to h the
// session stops observing it; releasing the last reference destroys it.
func (s *Session) drop(h document.Handle) {
	if h.IsZero() {
		return
	}
	referenced := false
	for _, sl := range s.slots {
		if sl.state != Removed && sl.holds(h) {
			referenced = true
			break
		}
	}
	if !referenced {
		s.bus.Unsubscribe(h, s)
	}
	if _, err := s.bus.Release(h); err != nil {
		s.log.Warn().Err(err).Stringer("document", h).Msg("release failed")
	}
}

// blocks reports whether dropping h from slot i would lose unsaved changes.
func (s *Session) blocks(i int, h document.Handle, res Resolution) error {
	if res == Discard || !s.askToSave || h.IsZero() {
		return nil
	}
	dirty, err := s.bus.Dirty(h)
	if err != nil || !dirty || s.bus.Refs(h) > 1 {
		return nil
	}
	title := chart.DefaultName
	if d, err := s.bus.Data(h); err == nil {
		title = d.Title()
	}
	return &UnsavedChangesError{Slot: i, Document: h, Title: title}
}

// AddFile opens h in a new slot and makes it current.
func (s *Session) AddFile(h document.Handle) (int, error) {
	if err := s.take(h); err != nil {
		return -1, err
	}
	sl := &slot{id: uuid.New(), state: Populated, primary: h}
	s.slots = append(s.slots, sl)
	s.current = len(s.slots) - 1
	s.emit(EventCreated, sl)
	s.mirror()
	s.emit(EventActivated, sl)
	return s.current, nil
}

// OpenInCurrentSlot replaces the current slot's primary document with h. An
// empty session gets a new slot instead.
func (s *Session) OpenInCurrentSlot(h document.Handle, res Resolution) error {
	if s.current < 0 {
		_, err := s.AddFile(h)
		return err
	}
	sl := s.slots[s.current]
	if sl.primary == h {
		return nil
	}
	if err := s.blocks(s.current, sl.primary, res); err != nil {
		return err
	}
	if err := s.take(h); err != nil {
		return err
	}
	old, oldSecondary := sl.primary, document.Handle{}
	sl.primary = h
	if sl.secondary == h {
		oldSecondary, sl.secondary = sl.secondary, document.Handle{}
	}
	s.mirror()
	s.drop(old)
	s.drop(oldSecondary)
	s.emit(EventUpdated, sl)
	return nil
}

// OpenAsSecondary shows h as the comparison document of the current slot.
func (s *Session) OpenAsSecondary(h document.Handle) error {
	if s.current < 0 {
		return fmt.Errorf("%w: nothing open to compare with", ErrNoSlot)
	}
	sl := s.slots[s.current]
	if sl.primary == h {
		return ErrSelfComparison
	}
	if sl.secondary == h {
		return nil
	}
	if err := s.take(h); err != nil {
		return err
	}
	old := sl.secondary
	sl.secondary = h
	s.mirror()
	s.drop(old)
	s.emit(EventUpdated, sl)
	return nil
}

// ClearSecondary removes the comparison document of the current slot.
func (s *Session) ClearSecondary(res Resolution) error {
	if s.current < 0 {
		return nil
	}
	sl := s.slots[s.current]
	if sl.secondary.IsZero() {
		return nil
	}
	if err := s.blocks(s.current, sl.secondary, res); err != nil {
		return err
	}
	old := sl.secondary
	sl.secondary = document.Handle{}
	s.mirror()
	s.drop(old)
	s.emit(EventUpdated, sl)
	return nil
}

// CloseSlot removes slot i. Its documents are released before the slot
// leaves the list, so views showing them see DocumentDestroyed first. The
// slot now at index i becomes current if i was current, else the previous
// one.
func (s *Session) CloseSlot(i int, res Resolution) error {
	if err := s.check(i); err != nil {
		return err
	}
	sl := s.slots[i]
	if err := s.blocks(i, sl.primary, res); err != nil {
		return err
	}
	if err := s.blocks(i, sl.secondary, res); err != nil {
		return err
	}

	sl.state = Closing
	closed := s.snapshot(sl)
	primary, secondary := sl.primary, sl.secondary
	sl.state = Removed
	s.drop(secondary)
	s.drop(primary)

	s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
	wasCurrent := i == s.current
	switch {
	case len(s.slots) == 0:
		s.current = -1
	case i < s.current:
		s.current--
	case wasCurrent && i >= len(s.slots):
		s.current = len(s.slots) - 1
	}

	closed.State = Removed
	closed.Index = i
	s.emitSnapshot(EventClosed, closed)
	if wasCurrent {
		s.mirror()
		if s.current >= 0 {
			s.emit(EventActivated, s.slots[s.current])
		}
	}
	return nil
}

func (s *Session) emitSnapshot(t EventType, snap SlotSnapshot) {
	ev := Event{Type: t, Slot: snap, Active: s.activeID()}
	s.log.Debug().Str("event", string(t)).Str("slot", snap.ID.String()).Msg("session event")
	for _, l := range append([]listener(nil), s.listeners...) {
		l.fn(ev)
	}
}

// NextTab makes the following slot current, wrapping around.
func (s *Session) NextTab() {
	if len(s.slots) == 0 {
		return
	}
	_ = s.SetCurrent((s.current + 1) % len(s.slots))
}

// SetCurrent makes slot i current.
func (s *Session) SetCurrent(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if i == s.current {
		return nil
	}
	s.current = i
	s.mirror()
	s.emit(EventActivated, s.slots[i])
	return nil
}

// Swap exchanges slots i and j. The current slot stays current.
func (s *Session) Swap(i, j int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if err := s.check(j); err != nil {
		return err
	}
	if i == j {
		return nil
	}
	s.slots[i], s.slots[j] = s.slots[j], s.slots[i]
	switch s.current {
	case i:
		s.current = j
	case j:
		s.current = i
	}
	s.emit(EventSwapped, s.slots[j])
	return nil
}

// DocumentChanged implements document.Observer; label-relevant changes
// produce EventUpdated for every slot showing h.
func (s *Session) DocumentChanged(h document.Handle, change chart.Members) {
	if !change.Any(chart.Name | chart.State) {
		return
	}
	for _, sl := range s.slots {
		if sl.holds(h) {
			s.emit(EventUpdated, sl)
		}
	}
}

// DocumentDestroyed implements document.Observer. The session holds a
// reference to every document it shows, so this only fires for documents
// it has already let go of.
func (s *Session) DocumentDestroyed(h document.Handle) {
	s.log.Debug().Stringer("document", h).Msg("document destroyed")
}
