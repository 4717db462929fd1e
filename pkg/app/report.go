package app

import (
	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/session"
)

// ReportChart describes one open document.
type ReportChart struct {
	Handle document.Handle
	Data   chart.Data
	Origin string
	Dirty  bool
	Refs   int
}

// ReportSlot groups the documents shown in a slot.
type ReportSlot struct {
	Slot      session.SlotSnapshot
	Current   bool
	Primary   ReportChart
	Secondary *ReportChart
}

// ReportResult summarises the open session.
type ReportResult struct {
	Slots     []ReportSlot
	Documents int
	Dirty     int
	// Metrics holds the workspace counters, see metrics.Recorder.Counts.
	Metrics map[string]float64 `json:",omitempty"`
}

// Report describes every slot and the documents it shows.
func (w *Workspace) Report() ReportResult {
	out := ReportResult{Documents: w.Bus.Len()}
	seen := make(map[document.Handle]struct{})
	for i, s := range w.Session.Slots() {
		item := ReportSlot{Slot: s, Current: i == w.Session.Current()}
		item.Primary = w.describe(s.Primary)
		count := func(rc ReportChart) {
			if _, dup := seen[rc.Handle]; dup {
				return
			}
			seen[rc.Handle] = struct{}{}
			if rc.Dirty {
				out.Dirty++
			}
		}
		count(item.Primary)
		if !s.Secondary.IsZero() {
			sec := w.describe(s.Secondary)
			item.Secondary = &sec
			count(sec)
		}
		out.Slots = append(out.Slots, item)
	}
	counts, err := w.metrics.Counts()
	if err != nil {
		w.log.Warn().Err(err).Msg("gathering metrics failed")
	}
	out.Metrics = counts
	return out
}

func (w *Workspace) describe(h document.Handle) ReportChart {
	rc := ReportChart{Handle: h, Refs: w.Bus.Refs(h)}
	rc.Data, _ = w.Bus.Data(h)
	rc.Origin, _ = w.Bus.Origin(h)
	rc.Dirty, _ = w.Bus.Dirty(h)
	return rc
}
