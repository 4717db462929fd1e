package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/session"
	"tableflip.dev/chartdesk/pkg/view"
)

// tabWidth caps the width of a single tab label.
const tabWidth = 28

// controller turns key presses into workspace calls and keeps the status
// line. It holds at most one action waiting for a yes/no answer.
type controller struct {
	ctx context.Context
	ws  *app.Workspace
	log zerolog.Logger

	status  string
	pending func(session.Resolution) error
}

func newController(ctx context.Context, ws *app.Workspace) *controller {
	return &controller{
		ctx: ctx,
		ws:  ws,
		log: zerolog.Ctx(ctx).With().Str("component", "ui").Logger(),
	}
}

// asking reports whether an answer is awaited.
func (c *controller) asking() bool { return c.pending != nil }

// run tries fn asking about unsaved changes. A refusal parks fn until the
// user answers.
func (c *controller) run(done string, fn func(session.Resolution) error) {
	c.pending = nil
	err := fn(session.Ask)
	var unsaved *session.UnsavedChangesError
	switch {
	case errors.As(err, &unsaved):
		c.pending = fn
		c.status = fmt.Sprintf("%q has unsaved changes. Discard them? (y/n)", unsaved.Title)
	case err != nil:
		c.fail(err)
	default:
		c.status = done
	}
}

// confirm parks fn behind a yes/no question without trying it first.
func (c *controller) confirm(question string, fn func(session.Resolution) error) {
	c.pending = fn
	c.status = question + " (y/n)"
}

// answer resolves the parked action.
func (c *controller) answer(yes bool) {
	fn := c.pending
	c.pending = nil
	if fn == nil {
		return
	}
	if !yes {
		c.status = "cancelled"
		return
	}
	if err := fn(session.Discard); err != nil {
		c.fail(err)
		return
	}
	c.status = "done"
}

func (c *controller) fail(err error) {
	c.log.Debug().Err(err).Msg("action failed")
	switch {
	case errors.Is(err, session.ErrSelfComparison):
		c.status = "a chart cannot be compared with itself"
	case errors.Is(err, session.ErrNoSlot):
		c.status = "open a chart first"
	default:
		c.status = err.Error()
	}
}

// request carries out a listing action on the chart with id.
func (c *controller) request(action database.Action, id string) {
	if id == "" {
		c.status = "no chart selected"
		return
	}
	if action == database.ActionDelete {
		s, _ := c.ws.Database.Lookup(id)
		c.confirm(fmt.Sprintf("Delete %q?", s.Name), func(res session.Resolution) error {
			return c.ws.Request(c.ctx, action, id, res)
		})
		return
	}
	c.run(string(action), func(res session.Resolution) error {
		return c.ws.Request(c.ctx, action, id, res)
	})
}

func (c *controller) newChart(name string) {
	name = strings.TrimSpace(name)
	if _, err := c.ws.NewChart(name); err != nil {
		c.fail(err)
		return
	}
	c.status = "new chart"
}

func (c *controller) closeCurrent() {
	i := c.ws.Session.Current()
	c.run("closed", func(res session.Resolution) error {
		return c.ws.Close(i, res)
	})
}

func (c *controller) clearSecondary() {
	c.run("comparison cleared", c.ws.Session.ClearSecondary)
}

func (c *controller) save() {
	i := c.ws.Session.Current()
	if i < 0 {
		c.status = "nothing to save"
		return
	}
	if err := c.ws.Save(c.ctx, i); err != nil {
		c.fail(err)
		return
	}
	c.status = "saved"
}

func (c *controller) nextTab() {
	c.ws.Session.NextTab()
	c.status = ""
}

// moveTab swaps the current tab with its neighbour delta places away.
func (c *controller) moveTab(delta int) {
	i := c.ws.Session.Current()
	j := i + delta
	if i < 0 || j < 0 || j >= c.ws.Session.Len() {
		return
	}
	if err := c.ws.Session.Swap(i, j); err != nil {
		c.fail(err)
		return
	}
	c.status = ""
}

// cycle moves a selector to its next choice.
func (c *controller) cycle(option string) {
	choices := view.Choices(option)
	if len(choices) == 0 {
		return
	}
	current := c.ws.Composite.Selector(option)
	next := choices[0]
	for i, ch := range choices {
		if ch.Value == current {
			next = choices[(i+1)%len(choices)]
			break
		}
	}
	if err := c.ws.Composite.SetSelector(option, next.Value); err != nil {
		c.fail(err)
		return
	}
	c.status = next.Label
}

// quit stores the settings, including the open charts for next time.
func (c *controller) quit() {
	if err := c.ws.SaveSettings(); err != nil && !errors.Is(err, app.ErrNoSettings) {
		c.log.Warn().Err(err).Msg("saving settings")
	}
}

// tabs renders the tab bar, marking the current slot.
func (c *controller) tabs() string {
	slots := c.ws.Session.Slots()
	if len(slots) == 0 {
		return " no charts open"
	}
	current := c.ws.Session.Current()
	parts := make([]string, 0, len(slots))
	for i, s := range slots {
		label := truncate.StringWithTail(s.Label, tabWidth, "…")
		if i == current {
			parts = append(parts, fmt.Sprintf("[%d %s]", i+1, label))
		} else {
			parts = append(parts, fmt.Sprintf(" %d %s ", i+1, label))
		}
	}
	return strings.Join(parts, " ")
}

// selectors renders the selector line of the chart area.
func (c *controller) selectors() string {
	z, h, l := c.ws.Chart.Options()
	return fmt.Sprintf("zodiac: %s  houses: %s  detail: %s", z, h, l)
}
