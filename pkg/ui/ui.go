// Package ui is the terminal interface: a chart list with search on the
// left, the chart area on the right and a tab bar on top.
package ui

import (
	"context"
	"strings"

	"github.com/marcusolsson/tui-go"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/session"
	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/view"
)

const help = `Enter open, ^T new tab, ^R compare, ^X clear compare, ^N new, ^D delete, ^S save, ^W close, Tab next tab, Alt+Left/Right move tab, F2-F4 selectors, Esc quit`

type UI struct {
	Workspace *app.Workspace

	c     *controller
	items []store.Summary

	tabs      *tui.Label
	search    *tui.Entry
	charts    *tui.Table
	info      *tui.Label
	secondary *tui.Label
	details   *tui.Table
	selectors *tui.Label
	status    *tui.StatusBar
}

func (d *UI) Do(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws := d.Workspace
	d.c = newController(ctx, ws)

	d.tabs = tui.NewLabel("")
	d.search = tui.NewEntry()
	d.search.SetFocused(true)
	d.charts = tui.NewTable(1, 0)
	d.charts.SetFocused(true)

	index := tui.NewVBox(d.search, d.charts, tui.NewSpacer())
	index.SetBorder(true)
	index.SetTitle("charts")
	index.SetSizePolicy(tui.Preferred, tui.Expanding)

	d.info = tui.NewLabel("")
	d.secondary = tui.NewLabel("")
	d.details = tui.NewTable(2, 0)
	d.selectors = tui.NewLabel("")

	area := tui.NewVBox(d.info, d.secondary, d.details, tui.NewSpacer(), d.selectors)
	area.SetBorder(true)
	area.SetSizePolicy(tui.Expanding, tui.Expanding)

	d.status = tui.NewStatusBar("")
	d.status.SetPermanentText(help)

	root := tui.NewVBox(
		d.tabs,
		tui.NewHBox(index, area),
		d.status,
	)

	ui, err := tui.New(root)
	if err != nil {
		return err
	}

	selected := func() string {
		i := d.charts.Selected()
		if i < 0 || i >= len(d.items) {
			return ""
		}
		return d.items[i].ID
	}
	act := func(fn func()) func() {
		return func() {
			fn()
			d.refresh()
		}
	}
	unlessAsking := func(fn func()) func() {
		return act(func() {
			if !d.c.asking() {
				fn()
			}
		})
	}

	d.search.OnChanged(func(e *tui.Entry) {
		ws.Database.SetFilter(e.Text())
		d.refresh()
	})
	d.charts.OnItemActivated(func(*tui.Table) {
		unlessAsking(func() { d.c.request(database.ActionOpen, selected()) })()
	})

	ui.SetKeybinding("Ctrl+T", unlessAsking(func() { d.c.request(database.ActionOpenInNewTab, selected()) }))
	ui.SetKeybinding("Ctrl+R", unlessAsking(func() { d.c.request(database.ActionOpenAsSecondary, selected()) }))
	ui.SetKeybinding("Ctrl+D", unlessAsking(func() { d.c.request(database.ActionDelete, selected()) }))
	ui.SetKeybinding("Ctrl+X", unlessAsking(d.c.clearSecondary))
	ui.SetKeybinding("Ctrl+N", unlessAsking(func() {
		d.c.newChart(d.search.Text())
		d.search.SetText("")
		ws.Database.SetFilter("")
	}))
	ui.SetKeybinding("Ctrl+S", unlessAsking(d.c.save))
	ui.SetKeybinding("Ctrl+W", unlessAsking(d.c.closeCurrent))
	ui.SetKeybinding("Tab", unlessAsking(d.c.nextTab))
	ui.SetKeybinding("Alt+Left", unlessAsking(func() { d.c.moveTab(-1) }))
	ui.SetKeybinding("Alt+Right", unlessAsking(func() { d.c.moveTab(1) }))
	ui.SetKeybinding("F2", unlessAsking(func() { d.c.cycle(view.OptZodiac) }))
	ui.SetKeybinding("F3", unlessAsking(func() { d.c.cycle(view.OptHouseSystem) }))
	ui.SetKeybinding("F4", unlessAsking(func() { d.c.cycle(view.OptLevel) }))
	ui.SetKeybinding("y", act(func() {
		if d.c.asking() {
			d.c.answer(true)
		}
	}))
	ui.SetKeybinding("n", act(func() {
		if d.c.asking() {
			d.c.answer(false)
		}
	}))
	ui.SetKeybinding("Esc", func() {
		d.c.quit()
		ui.Quit()
	})

	stopTabs := ws.Session.Listen(func(_ session.Event) { d.tabs.SetText(d.c.tabs()) })
	defer stopTabs()
	stopDB := ws.Database.Subscribe(func(database.Request) { d.items = ws.Database.Items() })
	defer stopDB()

	if err := ws.Start(ctx); err != nil {
		return err
	}
	go func() {
		_ = ws.Forward(ctx, func(fn func()) {
			ui.Update(func() {
				fn()
				d.refresh()
			})
		})
	}()

	d.refresh()
	return ui.Run()
}

// refresh redraws every widget from the workspace.
func (d *UI) refresh() {
	ws := d.Workspace

	d.tabs.SetText(d.c.tabs())

	selected := d.charts.Selected()
	d.items = ws.Database.Items()
	d.charts.RemoveRows()
	for _, s := range d.items {
		d.charts.AppendRow(tui.NewLabel(s.Name), tui.NewLabel(string(s.Type)))
	}
	switch {
	case len(d.items) == 0:
		d.charts.Select(-1)
	case selected < 0:
		d.charts.Select(0)
	case selected >= len(d.items):
		d.charts.Select(len(d.items) - 1)
	default:
		d.charts.Select(selected)
	}

	d.info.SetText(strings.Join(ws.Info.Lines(), "\n"))
	if lines := ws.SecondaryInfo.Lines(); len(lines) > 0 {
		d.secondary.SetText("\ncompared with\n" + strings.Join(lines, "\n"))
	} else {
		d.secondary.SetText("")
	}

	d.details.RemoveRows()
	for _, r := range ws.Details.Rows() {
		d.details.AppendRow(tui.NewLabel(r.Field), tui.NewLabel(r.Value))
	}
	d.selectors.SetText(d.c.selectors())
	d.status.SetText(d.c.status)
	// Answers must not end up in the search.
	d.search.SetFocused(!d.c.asking())
}
