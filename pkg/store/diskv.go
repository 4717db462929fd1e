package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"tableflip.dev/chartdesk/pkg/chart"
)

// ErrNotFound is returned when no chart is stored under an id.
var ErrNotFound = errors.New("store: chart not found")

const (
	chartsDir     = "charts"
	currentSchema = "chartdesk/v1"
)

// Summary describes a stored chart without loading all of it.
type Summary struct {
	ID    string
	Name  string
	Type  chart.Type
	Saved time.Time
}

// Persistence stores charts.
type Persistence interface {
	List(ctx context.Context) ([]Summary, error)
	Load(ctx context.Context, id string) (chart.Data, error)
	// Save stores data and returns the id it is now stored under. A chart
	// is keyed by its name, so renaming moves it and the previous id is
	// removed.
	Save(ctx context.Context, id string, data chart.Data) (string, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Config provides the location of the chart store.
type Config interface {
	BasePath() string
}

// Option configures the persistence.
type Option func(*persistence)

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *persistence) {
		p.log = l.With().Str("component", "store").Logger()
	}
}

// Load creates a Persistence backed by diskv rooted at cfg.BasePath().
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil || cfg.BasePath() == "" {
		return nil, errors.New("store: base path required")
	}
	basePath := cfg.BasePath()
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger
	now      func() time.Time
}

type record struct {
	Schema string     `json:"schema"`
	Saved  time.Time  `json:"saved"`
	Chart  chart.Data `json:"chart"`
}

// IDFor returns the id a chart named name is stored under.
func IDFor(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.TrimSpace(name)))
}

// NameFor decodes an id back into the chart name.
func NameFor(id string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("store: malformed id %q: %w", id, err)
	}
	return string(b), nil
}

func (p *persistence) read(id string) (*record, error) {
	val, err := p.d.Read(toKey(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	r := &record{}
	if err := json.Unmarshal(val, r); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	if r.Schema == "" {
		r.Schema = currentSchema
	}
	if r.Chart.Type == "" {
		r.Chart.Type = chart.TypeUndefined
	}
	return r, nil
}

func (p *persistence) List(ctx context.Context) ([]Summary, error) {
	all := make([]Summary, 0)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) != 1 || pk.Path[0] != chartsDir {
			continue
		}
		r, err := p.read(pk.FileName)
		if err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("skipping unreadable chart")
			continue
		}
		all = append(all, Summary{
			ID:    pk.FileName,
			Name:  r.Chart.Title(),
			Type:  r.Chart.Type,
			Saved: r.Saved,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortSummaries(all)
	return all, nil
}

func (p *persistence) Load(ctx context.Context, id string) (chart.Data, error) {
	if err := ctx.Err(); err != nil {
		return chart.Data{}, err
	}
	r, err := p.read(id)
	if err != nil {
		return chart.Data{}, err
	}
	return r.Chart, nil
}

func (p *persistence) Save(ctx context.Context, id string, data chart.Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	next := IDFor(data.Title())
	b, err := json.Marshal(record{Schema: currentSchema, Saved: p.now().UTC(), Chart: data})
	if err != nil {
		return "", err
	}
	if err := p.d.Write(toKey(next), b); err != nil {
		return "", fmt.Errorf("store: write %s: %w", data.Title(), err)
	}
	if id != "" && id != next {
		if err := p.d.Erase(toKey(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Warn().Err(err).Str("id", id).Msg("renamed chart left its previous copy behind")
		}
	}
	p.log.Debug().Str("id", next).Str("name", data.Title()).Msg("saved")
	return next, nil
}

func (p *persistence) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.d.Erase(toKey(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func sortSummaries(all []Summary) {
	sort.SliceStable(all, func(i, j int) bool {
		li, lj := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
		if li == lj {
			return all[i].ID < all[j].ID
		}
		return li < lj
	})
}

// keyToPathTransform maps `charts-<id>` to charts/<id>. Ids may contain '-'.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) < 2 {
		return &diskv.PathKey{FileName: s}
	}
	return &diskv.PathKey{
		Path:     parts[:1],
		FileName: parts[1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func toKey(id string) string {
	return chartsDir + "-" + id
}
