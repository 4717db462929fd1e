package session

import (
	"github.com/google/uuid"

	"tableflip.dev/chartdesk/pkg/document"
)

// EventType describes slot lifecycle or state changes.
type EventType string

const (
	// EventCreated indicates a slot was added.
	EventCreated EventType = "created"
	// EventActivated indicates a slot became current.
	EventActivated EventType = "activated"
	// EventUpdated indicates a slot's documents or label changed.
	EventUpdated EventType = "updated"
	// EventClosed indicates a slot was removed.
	EventClosed EventType = "closed"
	// EventSwapped indicates two slots traded places.
	EventSwapped EventType = "swapped"
)

// State is the lifecycle state of a slot.
type State int

const (
	Empty State = iota
	Populated
	Closing
	Removed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	case Closing:
		return "closing"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// SlotSnapshot is a read-only view of a slot.
type SlotSnapshot struct {
	ID        uuid.UUID
	Index     int
	State     State
	Label     string
	Primary   document.Handle
	Secondary document.Handle
	Dirty     bool
}

// Event represents a change to a slot or the slot list.
type Event struct {
	Type   EventType
	Slot   SlotSnapshot
	Active uuid.UUID
}

// Listener receives session events on the control thread.
type Listener func(Event)
