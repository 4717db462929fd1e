package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventChartChanged indicates the chart stored under ID was written or
	// removed.
	EventChartChanged EventType = iota

	// EventCatalogInvalidated signals that the listing as a whole may be
	// stale and callers should reload it.
	EventCatalogInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventChartChanged:
		return "chart-changed"
	case EventCatalogInvalidated:
		return "catalog-invalidated"
	}
	return "unknown"
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	ID   string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped while it is full. The channel is
// closed once ctx is done or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	charts := filepath.Join(p.basePath, chartsDir)
	if err := os.MkdirAll(charts, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn().Err(err).Msg("watcher close")
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Consumer is behind; the next catalog reload catches up.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn().Err(err).Msg("watcher error")
				throttle.Enqueue(Event{Type: EventCatalogInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								p.log.Warn().Err(err).Str("dir", dir).Msg("watch")
							} else {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(Event{Type: EventCatalogInvalidated}, send)
						continue
					}
				}

				id, inCharts := p.chartForPath(evt.Name)
				switch {
				case !inCharts:
					// Settings and other files next to the store.
				case id == "":
					throttle.Enqueue(Event{Type: EventCatalogInvalidated}, send)
				default:
					throttle.Enqueue(Event{Type: EventChartChanged, ID: id}, send)
				}
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// chartForPath derives the chart id from a diskv path. inCharts is false for
// paths outside the charts directory.
func (p *persistence) chartForPath(path string) (id string, inCharts bool) {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return "", false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if parts[0] != chartsDir {
		return "", false
	}
	if len(parts) != 2 || parts[1] == "" {
		return "", true
	}
	return parts[1], true
}

// eventThrottle coalesces rapid change notifications so listeners reload once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	if ev.ID != "" {
		t.pending[ev.Type][ev.ID] = struct{}{}
	}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[EventCatalogInvalidated]; ok {
		send(Event{Type: EventCatalogInvalidated})
	}
	for id := range pending[EventChartChanged] {
		send(Event{Type: EventChartChanged, ID: id})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
