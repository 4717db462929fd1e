// Package view holds the handlers that present open documents and the
// composite that keeps them pointed at the session's current slot.
package view

import (
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/settings"
)

// Handler is a view that presents up to Capacity documents. Handlers re-read
// chart data from the bus on every event and never cache it between events.
type Handler interface {
	document.Observer
	settings.Customizable

	// Capacity is the number of document positions the handler displays.
	// One for single-chart views, two for comparison-capable views.
	Capacity() int
	// Assign tells the handler which documents it now displays. docs has at
	// most Capacity entries; zero handles mark empty positions.
	Assign(docs []document.Handle)
}

// Follower is implemented by handlers that track the composite's shared
// selectors. The composite applies a followed option with ApplySettings,
// passing only that option.
type Follower interface {
	Follows() []string
}

// Offsetter is implemented by handlers that display only the positions from
// Offset on. Earlier positions are neither subscribed nor assigned.
type Offsetter interface {
	Offset() int
}

// Bus is the part of document.Bus the views use.
type Bus interface {
	document.Reader
	Subscribe(h document.Handle, o document.Observer) error
	Unsubscribe(h document.Handle, o document.Observer)
}

var _ Bus = (*document.Bus)(nil)

func position(docs []document.Handle, i int) document.Handle {
	if i < len(docs) {
		return docs[i]
	}
	return document.Handle{}
}

func offset(h Handler) int {
	if o, ok := h.(Offsetter); ok {
		return o.Offset()
	}
	return 0
}

func follows(h Handler, option string) bool {
	f, ok := h.(Follower)
	if !ok {
		return false
	}
	for _, o := range f.Follows() {
		if o == option {
			return true
		}
	}
	return false
}
