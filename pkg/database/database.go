// Package database is the listing panel over the chart store: a filtered
// list of stored charts and the open/delete requests raised from it.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/store"
)

// ErrUnknownChart is returned for requests naming a chart not in the list.
var ErrUnknownChart = errors.New("database: unknown chart")

// Action is what a Request asks for.
type Action string

const (
	ActionOpen            Action = "open"
	ActionOpenInNewTab    Action = "open-in-new-tab"
	ActionOpenAsSecondary Action = "open-as-secondary"
	ActionDelete          Action = "delete"
)

// ParseAction parses the string form of an Action.
func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.TrimSpace(raw)); a {
	case ActionOpen, ActionOpenInNewTab, ActionOpenAsSecondary, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("database: unknown action %q", raw)
}

// Request is raised for a chart in the list. Delete requests are raised
// after the chart was removed from the store.
type Request struct {
	Action Action
	ID     string
	Name   string
}

// Database holds the chart listing. Use it from the control thread only.
type Database struct {
	store store.Persistence
	log   zerolog.Logger

	all    []store.Summary
	filter string

	listeners []func(Request)
}

// New returns an empty listing over p. Call Refresh to populate it.
func New(p store.Persistence, log zerolog.Logger) *Database {
	return &Database{store: p, log: log.With().Str("component", "database").Logger()}
}

// Refresh reloads the listing from the store.
func (d *Database) Refresh(ctx context.Context) error {
	all, err := d.store.List(ctx)
	if err != nil {
		return err
	}
	d.all = all
	return nil
}

// SetFilter narrows Items to names containing q, ignoring case.
func (d *Database) SetFilter(q string) {
	d.filter = strings.TrimSpace(q)
}

// Filter returns the current search text.
func (d *Database) Filter() string {
	return d.filter
}

// Items returns the charts matching the filter, sorted by name.
func (d *Database) Items() []store.Summary {
	if d.filter == "" {
		return append([]store.Summary(nil), d.all...)
	}
	q := strings.ToLower(d.filter)
	out := make([]store.Summary, 0, len(d.all))
	for _, s := range d.all {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds a listed chart by id or, failing that, by exact name.
func (d *Database) Lookup(ref string) (store.Summary, bool) {
	for _, s := range d.all {
		if s.ID == ref {
			return s, true
		}
	}
	for _, s := range d.all {
		if strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	return store.Summary{}, false
}

// Subscribe registers fn for requests. The returned func removes it.
func (d *Database) Subscribe(fn func(Request)) func() {
	d.listeners = append(d.listeners, fn)
	idx := len(d.listeners) - 1
	return func() {
		if idx < len(d.listeners) {
			d.listeners[idx] = nil
		}
	}
}

// Request raises action for the chart identified by ref (id or name).
func (d *Database) Request(ctx context.Context, action Action, ref string) error {
	s, ok := d.Lookup(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChart, ref)
	}
	if action == ActionDelete {
		if err := d.store.Delete(ctx, s.ID); err != nil {
			return err
		}
		d.remove(s.ID)
	}
	d.log.Debug().Str("action", string(action)).Str("id", s.ID).Msg("request")
	req := Request{Action: action, ID: s.ID, Name: s.Name}
	for _, fn := range d.listeners {
		if fn != nil {
			fn(req)
		}
	}
	return nil
}

func (d *Database) remove(id string) {
	for i, s := range d.all {
		if s.ID == id {
			d.all = append(d.all[:i:i], d.all[i+1:]...)
			return
		}
	}
}

// Follow keeps the listing current from store change events. Reloads run
// on the watcher goroutine; the results are handed to post, which must run
// them on the control thread.
func (d *Database) Follow(ctx context.Context, post func(func())) error {
	events, err := d.store.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			d.log.Debug().Stringer("event", ev.Type).Str("id", ev.ID).Msg("store changed")
			all, err := d.store.List(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.log.Warn().Err(err).Msg("reloading chart list")
				}
				continue
			}
			post(func() { d.all = all })
		}
	}()
	return nil
}
