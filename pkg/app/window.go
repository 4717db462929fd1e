package app

import (
	"tableflip.dev/chartdesk/pkg/session"
	"tableflip.dev/chartdesk/pkg/settings"
	"tableflip.dev/chartdesk/pkg/view"
)

const (
	optAskToSave = "ask_to_save"
	optReopen    = "reopen"
	optOpen      = "open"
)

// Window is the root of the settings tree: window-level options plus the
// chart area below it.
type Window struct {
	session   *session.Session
	composite *view.Composite

	askDefault bool
	reopen     bool
	pending    []string
	origins    func() []string
}

var _ settings.Container = (*Window)(nil)

// Reopen reports whether the charts open at exit are restored on start.
func (w *Window) Reopen() bool { return w.reopen }

// Pending returns the chart ids recorded by the last applied snapshot.
func (w *Window) Pending() []string { return append([]string(nil), w.pending...) }

func (w *Window) SettingsKey() string { return "window" }

func (w *Window) DefaultSettings() settings.Values {
	return settings.Values{
		optAskToSave: w.askDefault,
		optReopen:    true,
		optOpen:      []string{},
	}
}

func (w *Window) CurrentSettings() settings.Values {
	open := w.origins()
	if w.session.Len() == 0 {
		open = w.Pending()
	}
	if open == nil {
		open = []string{}
	}
	return settings.Values{
		optAskToSave: w.session.AskToSave(),
		optReopen:    w.reopen,
		optOpen:      open,
	}
}

func (w *Window) ApplySettings(v settings.Values) {
	if v.Has(optAskToSave) {
		w.session.SetAskToSave(v.Bool(optAskToSave, w.askDefault))
	}
	if v.Has(optReopen) {
		w.reopen = v.Bool(optReopen, true)
	}
	if v.Has(optOpen) {
		w.pending = v.Strings(optOpen)
	}
}

func (w *Window) DescribeSettings(ed settings.Editor) {
	ed.Group("Window")
	ed.Toggle(optAskToSave, "Ask to save unsaved charts")
	ed.Toggle(optReopen, "Reopen charts on start")
}

func (w *Window) SettingsChildren() []settings.Customizable {
	return []settings.Customizable{w.composite}
}
