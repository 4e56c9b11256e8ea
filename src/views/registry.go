package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"photolayout/src/metrics"
	"photolayout/src/router"
)

var (
	ErrUnknownView    = errors.New("unknown view")
	ErrModuleNotFound = errors.New("view module not found")
)

const ContentType = "text/javascript; charset=utf-8"

// Module is a fetched view bundle.
type Module struct {
	Name     string
	Body     []byte
	LoadedAt time.Time
}

func (m *Module) ViewName() string {
	return m.Name
}

// Source fetches the bundle of a view by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

type Option func(*Registry)

// WithTimeout bounds each fetch from the source.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.log = logger
	}
}

// Registry resolves view names to modules. Declared views are fetched from
// the source on first use and cached; concurrent first fetches of one view
// share a single request. Failed fetches are not cached.
type Registry struct {
	source  Source
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
	group   singleflight.Group

	mu       sync.RWMutex
	declared map[string]bool
	modules  map[string]*Module
}

func NewRegistry(source Source, opts ...Option) *Registry {
	r := &Registry{
		source:   source,
		timeout:  10 * time.Second,
		log:      zap.NewNop(),
		now:      time.Now,
		declared: make(map[string]bool),
		modules:  make(map[string]*Module),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Declare makes views known to the registry without fetching them.
func (r *Registry) Declare(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.declared[name] = true
	}
}

// Preload declares and fetches a view immediately.
func (r *Registry) Preload(ctx context.Context, name string) error {
	r.Declare(name)
	_, err := r.Module(ctx, name)
	return err
}

// Routes declares every route of table, preloading the eager ones.
func (r *Registry) Routes(ctx context.Context, table *router.Table) error {
	for _, route := range table.Routes() {
		if route.Lazy {
			r.Declare(route.Name)
			continue
		}
		if err := r.Preload(ctx, route.Name); err != nil {
			return fmt.Errorf("preload %s: %w", route.Name, err)
		}
	}
	return nil
}

// Loaded reports whether a view module is already cached.
func (r *Registry) Loaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Names returns the declared view names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.declared))
	for name := range r.declared {
		names = append(names, name)
	}
	return names
}

// Load implements router.Loader.
func (r *Registry) Load(ctx context.Context, name string) (router.View, error) {
	m, err := r.Module(ctx, name)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Module returns the cached module or fetches it. When ctx is done first the
// caller stops waiting; the shared fetch carries on and its result is cached
// for the next caller.
func (r *Registry) Module(ctx context.Context, name string) (*Module, error) {
	r.mu.RLock()
	m, cached := r.modules[name]
	declared := r.declared[name]
	r.mu.RUnlock()

	if cached {
		return m, nil
	}
	if !declared {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}

	ch := r.group.DoChan(name, func() (interface{}, error) {
		return r.fetch(name)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Module), nil
	}
}

func (r *Registry) fetch(name string) (*Module, error) {
	r.mu.RLock()
	m, cached := r.modules[name]
	r.mu.RUnlock()
	if cached {
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	body, err := r.source.Fetch(ctx, name)
	metrics.ViewLoadDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ViewLoadsTotal.WithLabelValues(name, metrics.OutcomeFailed).Inc()
		r.log.Warn("view fetch failed", zap.String("view", name), zap.Error(err))
		return nil, fmt.Errorf("fetch view %s: %w", name, err)
	}

	m = &Module{Name: name, Body: body, LoadedAt: r.now()}
	r.mu.Lock()
	r.modules[name] = m
	r.mu.Unlock()

	metrics.ViewLoadsTotal.WithLabelValues(name, metrics.OutcomeOK).Inc()
	r.log.Debug("view loaded", zap.String("view", name), zap.Int("size", len(body)), zap.Duration("took", time.Since(start)))
	return m, nil
}
