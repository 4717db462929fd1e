// Package app wires the document bus, session, chart area, listing panel and
// settings into one workspace shared by the CLI and the terminal UI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/metrics"
	"tableflip.dev/chartdesk/pkg/session"
	"tableflip.dev/chartdesk/pkg/settings"
	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/view"
)

var (
	ErrNoPersistence = errors.New("app: no persistence configured")
	ErrNoSettings    = errors.New("app: no settings file configured")
	ErrNothingOpen   = errors.New("app: no chart is open")
)

// restoreLimit bounds concurrent chart loads during restore.
const restoreLimit = 4

// Options configures a Workspace.
type Options struct {
	Persistence    store.Persistence
	SettingsFile   string
	AskToSave      bool
	StrictSettings bool
	Logger         zerolog.Logger
	Metrics        *metrics.Recorder
}

// Workspace is the application state. Everything except Post must be used
// from the control thread, the goroutine running Run or Drain.
type Workspace struct {
	Persistence store.Persistence
	Bus         *document.Bus
	Session     *session.Session
	Composite   *view.Composite
	Window      *Window
	Database    *database.Database

	Info          *view.Info
	SecondaryInfo *view.Info
	Chart         *view.Chart
	Details       *view.Details

	log          zerolog.Logger
	metrics      *metrics.Recorder
	aggregator   *settings.Aggregator
	settingsFile *settings.File
	posts        chan func()
}

// New assembles a workspace. The session starts empty; call LoadSettings
// and Restore to bring back the previous state.
func New(opts Options) *Workspace {
	log := opts.Logger
	w := &Workspace{
		Persistence: opts.Persistence,
		log:         log.With().Str("component", "workspace").Logger(),
		metrics:     opts.Metrics,
		posts:       make(chan func(), 64),
	}

	w.Bus = document.NewBus(document.WithLogger(log), document.WithMetrics(opts.Metrics))

	w.Info = view.NewInfo(w.Bus)
	w.SecondaryInfo = view.NewSecondaryInfo(w.Bus)
	w.Chart = view.NewChart(w.Bus)
	w.Details = view.NewDetails(w.Bus)
	w.Composite = view.NewComposite(w.Bus, log, opts.Metrics, w.Info, w.SecondaryInfo, w.Chart, w.Details)

	w.Session = session.New(w.Bus, session.WithLogger(log), session.WithView(w.Composite))
	w.Session.SetAskToSave(opts.AskToSave)

	w.Window = &Window{session: w.Session, composite: w.Composite, askDefault: opts.AskToSave, reopen: true}
	w.Window.origins = w.openOrigins

	aggOpts := []settings.Option{settings.WithLogger(log), settings.WithMetrics(opts.Metrics)}
	if !opts.StrictSettings {
		aggOpts = append(aggOpts, settings.Lenient())
	}
	w.aggregator = settings.NewAggregator(aggOpts...)
	if opts.SettingsFile != "" {
		w.settingsFile = settings.NewFile(opts.SettingsFile)
	}

	if opts.Persistence != nil {
		w.Database = database.New(opts.Persistence, log)
	}
	return w
}

// Post queues fn to run on the control thread. It is safe to call from any
// goroutine.
func (w *Workspace) Post(fn func()) {
	w.posts <- fn
}

// Drain runs every queued func without blocking and reports how many ran.
func (w *Workspace) Drain() int {
	n := 0
	for {
		select {
		case fn := <-w.posts:
			fn()
			n++
		default:
			return n
		}
	}
}

// Run executes queued funcs until ctx is done.
func (w *Workspace) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-w.posts:
			fn()
		}
	}
}

// Forward hands each queued func to exec until ctx is done. exec must run
// the func on the control thread, such as a UI event loop.
func (w *Workspace) Forward(ctx context.Context, exec func(func())) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-w.posts:
			exec(fn)
		}
	}
}

func (w *Workspace) openOrigins() []string {
	var out []string
	for _, s := range w.Session.Slots() {
		if o, err := w.Bus.Origin(s.Primary); err == nil && o != "" {
			out = append(out, o)
		}
	}
	return out
}

// discard destroys a document nobody took a reference to.
func (w *Workspace) discard(h document.Handle) {
	if err := w.Bus.Retain(h); err != nil {
		return
	}
	_, _ = w.Bus.Release(h)
}

// NewChart opens an unsaved chart named name in a new slot, seeded with the
// chart area's default location.
func (w *Workspace) NewChart(name string) (document.Handle, error) {
	data := w.Composite.NewChartData()
	data.Name = name
	h := w.Bus.Create(data)
	if _, err := w.Session.AddFile(h); err != nil {
		w.discard(h)
		return document.Handle{}, err
	}
	return h, nil
}

// Open loads the chart stored under id and shows it as action says.
// Opening a chart that is already the primary of a slot activates that slot.
func (w *Workspace) Open(ctx context.Context, id string, action database.Action, res session.Resolution) (document.Handle, error) {
	if w.Persistence == nil {
		return document.Handle{}, ErrNoPersistence
	}
	if action == database.ActionOpenAsSecondary {
		// The primary already is this chart; let the session reject it.
		if docs := w.Session.CurrentDocuments(); len(docs) > 0 {
			if origin, _ := w.Bus.Origin(docs[0]); origin == id {
				return document.Handle{}, w.Session.OpenAsSecondary(docs[0])
			}
		}
	} else {
		if i := w.Session.Find(id); i >= 0 {
			if err := w.Session.SetCurrent(i); err != nil {
				return document.Handle{}, err
			}
			return w.Session.CurrentDocuments()[0], nil
		}
	}
	data, err := w.Persistence.Load(ctx, id)
	if err != nil {
		return document.Handle{}, err
	}
	return w.show(data, id, action, res)
}

func (w *Workspace) show(data chart.Data, id string, action database.Action, res session.Resolution) (document.Handle, error) {
	h := w.Bus.Open(data, id)
	var err error
	switch action {
	case database.ActionOpen:
		err = w.Session.OpenInCurrentSlot(h, res)
	case database.ActionOpenInNewTab:
		_, err = w.Session.AddFile(h)
	case database.ActionOpenAsSecondary:
		err = w.Session.OpenAsSecondary(h)
	default:
		err = fmt.Errorf("app: cannot open with action %q", action)
	}
	if err != nil {
		w.discard(h)
		return document.Handle{}, err
	}
	return h, nil
}

// Request carries out a listing panel request for ref (id or name).
func (w *Workspace) Request(ctx context.Context, action database.Action, ref string, res session.Resolution) error {
	if w.Database == nil {
		return ErrNoPersistence
	}
	if action == database.ActionDelete {
		return w.Database.Request(ctx, action, ref)
	}
	s, ok := w.Database.Lookup(ref)
	if !ok {
		return fmt.Errorf("%w: %s", database.ErrUnknownChart, ref)
	}
	if _, err := w.Open(ctx, s.ID, action, res); err != nil {
		return err
	}
	return w.Database.Request(ctx, action, s.ID)
}

// Edit mutates the current slot's primary chart.
func (w *Workspace) Edit(members chart.Members, fn func(*chart.Data)) error {
	docs := w.Session.CurrentDocuments()
	if len(docs) == 0 {
		return ErrNothingOpen
	}
	return w.Bus.Mutate(docs[0], members, fn)
}

// Save stores the primary chart of slot i and marks it saved.
func (w *Workspace) Save(ctx context.Context, i int) error {
	if w.Persistence == nil {
		return ErrNoPersistence
	}
	slot, err := w.Session.Slot(i)
	if err != nil {
		return err
	}
	return w.save(ctx, slot.Primary)
}

// SaveAll stores every dirty document shown in any slot.
func (w *Workspace) SaveAll(ctx context.Context) error {
	if w.Persistence == nil {
		return ErrNoPersistence
	}
	for _, s := range w.Session.Slots() {
		for _, h := range []document.Handle{s.Primary, s.Secondary} {
			if h.IsZero() {
				continue
			}
			if dirty, _ := w.Bus.Dirty(h); !dirty {
				continue
			}
			if err := w.save(ctx, h); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workspace) save(ctx context.Context, h document.Handle) error {
	data, err := w.Bus.Data(h)
	if err != nil {
		return err
	}
	origin, err := w.Bus.Origin(h)
	if err != nil {
		return err
	}
	id, err := w.Persistence.Save(ctx, origin, data)
	if err != nil {
		return err
	}
	w.log.Info().Str("id", id).Str("name", data.Title()).Msg("chart saved")
	return w.Bus.MarkSaved(h, id)
}

// Close closes slot i.
func (w *Workspace) Close(i int, res session.Resolution) error {
	return w.Session.CloseSlot(i, res)
}

// Restore loads ids concurrently and posts their opening, in order, to the
// control thread. Charts that no longer exist are skipped.
func (w *Workspace) Restore(ctx context.Context, ids []string) error {
	if w.Persistence == nil {
		return ErrNoPersistence
	}
	loaded := make([]*chart.Data, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreLimit)
	for i, id := range ids {
		g.Go(func() error {
			data, err := w.Persistence.Load(gctx, id)
			if errors.Is(err, store.ErrNotFound) {
				w.log.Warn().Str("id", id).Msg("chart to restore is gone")
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = &data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.Post(func() {
		for i, data := range loaded {
			if data == nil {
				continue
			}
			if _, err := w.show(*data, ids[i], database.ActionOpenInNewTab, session.Ask); err != nil {
				w.log.Warn().Err(err).Str("id", ids[i]).Msg("restoring chart")
			}
		}
	})
	return nil
}

// Settings returns the current settings snapshot.
func (w *Workspace) Settings() (settings.Snapshot, error) {
	return w.aggregator.BuildSnapshot(w.Window)
}

// DefaultSettings returns the snapshot of every default.
func (w *Workspace) DefaultSettings() (settings.Snapshot, error) {
	return w.aggregator.Defaults(w.Window)
}

// ApplySettings pushes snap to every component.
func (w *Workspace) ApplySettings(snap settings.Snapshot) error {
	return w.aggregator.ApplySnapshot(w.Window, snap)
}

// SettingsForm describes every editable option.
func (w *Workspace) SettingsForm() (*settings.Form, error) {
	form := &settings.Form{}
	if err := w.aggregator.DescribeEditor(w.Window, form); err != nil {
		return nil, err
	}
	return form, nil
}

// SetSetting parses raw for the option at key, applies it and saves the
// settings file when one is configured.
func (w *Workspace) SetSetting(key, raw string) error {
	form, err := w.SettingsForm()
	if err != nil {
		return err
	}
	snap, err := w.Settings()
	if err != nil {
		return err
	}
	next, err := form.Set(snap, key, raw)
	if err != nil {
		return err
	}
	if err := w.ApplySettings(next); err != nil {
		return err
	}
	if w.settingsFile == nil {
		return nil
	}
	return w.SaveSettings()
}

// LoadSettings applies the settings file. A missing file applies defaults.
func (w *Workspace) LoadSettings() error {
	if w.settingsFile == nil {
		return ErrNoSettings
	}
	snap, err := w.settingsFile.Load()
	if err != nil {
		return err
	}
	return w.ApplySettings(snap)
}

// SaveSettings writes the current snapshot to the settings file.
func (w *Workspace) SaveSettings() error {
	if w.settingsFile == nil {
		return ErrNoSettings
	}
	snap, err := w.Settings()
	if err != nil {
		return err
	}
	return w.settingsFile.Save(snap)
}

// Start loads settings, restores the previously open charts when asked to
// and begins following store changes. Restored charts appear once the
// queue is drained.
func (w *Workspace) Start(ctx context.Context) error {
	if w.settingsFile != nil {
		if err := w.LoadSettings(); err != nil {
			return err
		}
	}
	if w.Database == nil {
		return nil
	}
	if err := w.Database.Refresh(ctx); err != nil {
		return err
	}
	if w.Window.Reopen() {
		if err := w.Restore(ctx, w.Window.Pending()); err != nil {
			return err
		}
	}
	return w.Database.Follow(ctx, w.Post)
}
