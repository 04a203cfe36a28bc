package forms

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Option is a lightweight {id, label} projection of a related record. Parent
// holds the foreign key used by dependent selects.
type Option struct {
	ID     string
	Label  string
	Parent string
}

// ListState tells a usable list apart from one that failed to load.
type ListState int

const (
	ListReady ListState = iota
	ListUnavailable
)

// List is an ordered reference list. Rendering always prepends a sentinel
// empty option whose label depends on State.
type List struct {
	Kind    string
	Options []Option
	State   ListState
}

// Available reports whether the list loaded.
func (l List) Available() bool { return l.State == ListReady }

// Contains reports whether id is one of the options.
func (l List) Contains(id string) bool {
	for _, o := range l.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// SentinelLabel is the translation key of the empty option.
func (l List) SentinelLabel() string {
	if l.State == ListUnavailable {
		return "form.select.unavailable"
	}
	return "form.select.none"
}

// Fetcher loads the options of one reference kind.
type Fetcher interface {
	FetchOptions(ctx context.Context, kind string) ([]Option, error)
}

// LoadRecorder observes reference loads.
type LoadRecorder interface {
	ObserveReferenceLoad(kind string, ok bool)
}

// Loader fetches reference lists for a single form mount. It caches by kind for
// the lifetime of the mount, so a list is requested at most once per mount.
// Create a new Loader for every mount.
type Loader struct {
	fetcher  Fetcher
	logger   *slog.Logger
	recorder LoadRecorder

	mu    sync.Mutex
	cache map[string]List
	group singleflight.Group
}

// NewLoader constructs a Loader. recorder may be nil.
func NewLoader(fetcher Fetcher, logger *slog.Logger, recorder LoadRecorder) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fetcher: fetcher, logger: logger, recorder: recorder, cache: make(map[string]List)}
}

// Load returns the list of kind. A fetch failure yields an unavailable list
// rather than an error so the form still renders.
func (l *Loader) Load(ctx context.Context, kind string) List {
	l.mu.Lock()
	if list, ok := l.cache[kind]; ok {
		l.mu.Unlock()
		return list
	}
	l.mu.Unlock()

	v, _, _ := l.group.Do(kind, func() (any, error) {
		options, err := l.fetcher.FetchOptions(ctx, kind)
		list := List{Kind: kind, Options: options}
		if err != nil {
			l.logger.Warn("load reference", slog.String("kind", kind), slog.Any("error", err))
			list = List{Kind: kind, State: ListUnavailable}
		}
		if l.recorder != nil {
			l.recorder.ObserveReferenceLoad(kind, err == nil)
		}
		l.mu.Lock()
		l.cache[kind] = list
		l.mu.Unlock()
		return list, nil
	})
	return v.(List)
}

// LoadAll fetches kinds in parallel.
func (l *Loader) LoadAll(ctx context.Context, kinds ...string) map[string]List {
	results := make([]List, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			results[i] = l.Load(gctx, kind)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]List, len(kinds))
	for i, kind := range kinds {
		out[kind] = results[i]
	}
	return out
}
