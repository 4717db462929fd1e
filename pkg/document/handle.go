package document

import (
	"fmt"

	"tableflip.dev/chartdesk/pkg/chart"
)

// Handle identifies a document for its whole lifetime. Handles are
// generation-checked: once a document is destroyed its handle never resolves
// again, even if the arena slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h was never issued by a Bus.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "doc#-"
	}
	return fmt.Sprintf("doc#%d.%d", h.index, h.gen)
}

// MarshalText renders h as its String form, so reports encode readable ids.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Observer reacts to document events. Implementations must be comparable
// (pointer receivers) since the bus identifies subscribers by equality.
type Observer interface {
	// DocumentChanged is called after a mutation of h has been committed.
	DocumentChanged(h Handle, change chart.Members)
	// DocumentDestroyed is called once, before h stops resolving. Observers
	// must drop every reference to h.
	DocumentDestroyed(h Handle)
}

// Reader is the read side of the bus handed to views.
type Reader interface {
	Data(h Handle) (chart.Data, error)
	Dirty(h Handle) (bool, error)
	Origin(h Handle) (string, error)
}
