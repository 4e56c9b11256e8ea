package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"photolayout/src/metrics"
)

var (
	// ErrSuperseded is returned to a navigation whose result was discarded
	// because a newer navigation was requested before it finished.
	ErrSuperseded = errors.New("navigation superseded")
	// ErrViewLoad wraps failures fetching a view module.
	ErrViewLoad = errors.New("view load failed")

	ErrNoHistory = errors.New("no history entry")
)

// View is a loaded view module.
type View interface {
	ViewName() string
}

// Loader fetches the module of a view by route name. Implementations must
// honour ctx cancellation.
type Loader interface {
	Load(ctx context.Context, name string) (View, error)
}

type LoaderFunc func(ctx context.Context, name string) (View, error)

func (f LoaderFunc) Load(ctx context.Context, name string) (View, error) {
	return f(ctx, name)
}

// Position is a viewport scroll offset.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Location is the committed result of a navigation.
type Location struct {
	Match
	Href string `json:"href"`
	View View   `json:"-"`
}

// AfterHook runs after every committed navigation. from is the zero Location
// on the first navigation.
type AfterHook func(to, from Location)

type mode int

const (
	modePush mode = iota
	modeReplace
	modeTraverse
)

type Option func(*Navigator)

func WithLogger(logger *zap.Logger) Option {
	return func(n *Navigator) {
		n.log = logger
	}
}

// Navigator tracks the current location, history and scroll position of one
// client. Only the most recent navigation request can commit.
type Navigator struct {
	table  *Table
	loader Loader
	log    *zap.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current *Location
	scroll  Position
	history []Location
	index   int
	hooks   []AfterHook
}

func NewNavigator(table *Table, loader Loader, opts ...Option) *Navigator {
	n := &Navigator{
		table:  table,
		loader: loader,
		log:    zap.NewNop(),
		index:  -1,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Push navigates to path and appends a history entry.
func (n *Navigator) Push(ctx context.Context, path string) (Location, error) {
	return n.navigate(ctx, path, modePush, 0)
}

// Replace navigates to path, replacing the current history entry.
func (n *Navigator) Replace(ctx context.Context, path string) (Location, error) {
	return n.navigate(ctx, path, modeReplace, 0)
}

// PushNamed navigates to a named route.
func (n *Navigator) PushNamed(ctx context.Context, name string, params Params) (Location, error) {
	href, err := n.table.Href(name, params)
	if err != nil {
		return Location{}, err
	}
	return n.Push(ctx, href)
}

func (n *Navigator) Back(ctx context.Context) (Location, error) {
	return n.Go(ctx, -1)
}

func (n *Navigator) Forward(ctx context.Context) (Location, error) {
	return n.Go(ctx, 1)
}

// Go moves delta entries through history.
func (n *Navigator) Go(ctx context.Context, delta int) (Location, error) {
	n.mu.Lock()
	target := n.index + delta
	if delta == 0 || target < 0 || target >= len(n.history) {
		n.mu.Unlock()
		return Location{}, fmt.Errorf("%w: %+d", ErrNoHistory, delta)
	}
	href := n.history[target].Href
	n.mu.Unlock()

	return n.navigate(ctx, href, modeTraverse, target)
}

// Current returns the committed location, if any.
func (n *Navigator) Current() (Location, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Location{}, false
	}
	return *n.current, true
}

// History returns a copy of the history entries and the current index.
func (n *Navigator) History() ([]Location, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Location, len(n.history))
	copy(out, n.history)
	return out, n.index
}

// ScrollTo records a viewport position, e.g. after the user scrolls.
func (n *Navigator) ScrollTo(x, y float64) {
	n.mu.Lock()
	n.scroll = Position{X: x, Y: y}
	n.mu.Unlock()
}

func (n *Navigator) Scroll() Position {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scroll
}

func (n *Navigator) AfterEach(hook AfterHook) {
	n.mu.Lock()
	n.hooks = append(n.hooks, hook)
	n.mu.Unlock()
}

func (n *Navigator) navigate(ctx context.Context, path string, m mode, target int) (Location, error) {
	match, err := n.table.Resolve(path)
	if err != nil {
		// still the latest request: whatever is pending must not commit
		n.mu.Lock()
		n.supersede()
		n.cancel = nil
		n.mu.Unlock()

		metrics.NavigationsTotal.WithLabelValues("none", metrics.OutcomeNotFound).Inc()
		n.log.Debug("navigation to unknown path", zap.String("path", path))
		return Location{}, err
	}

	n.mu.Lock()
	gen := n.supersede()
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.mu.Unlock()
	defer cancel()

	view, loadErr := n.loader.Load(ctx, match.Name)

	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		metrics.NavigationsTotal.WithLabelValues(match.Name, metrics.OutcomeSuperseded).Inc()
		n.log.Debug("navigation superseded", zap.String("path", path), zap.String("route", match.Name))
		return Location{}, fmt.Errorf("%w: %s", ErrSuperseded, path)
	}
	n.cancel = nil
	if loadErr != nil {
		n.mu.Unlock()
		metrics.NavigationsTotal.WithLabelValues(match.Name, metrics.OutcomeFailed).Inc()
		n.log.Warn("navigation aborted", zap.String("path", path), zap.String("route", match.Name), zap.Error(loadErr))
		return Location{}, fmt.Errorf("%w: %s: %w", ErrViewLoad, match.Name, loadErr)
	}

	href, err := n.table.Href(match.Name, match.Params)
	if err != nil {
		href = n.table.Base() + match.Path
	}
	to := Location{Match: match, Href: href, View: view}
	var from Location
	if n.current != nil {
		from = *n.current
	}
	n.commit(to, m, target)
	hooks := append([]AfterHook(nil), n.hooks...)
	n.mu.Unlock()

	metrics.NavigationsTotal.WithLabelValues(match.Name, metrics.OutcomeOK).Inc()
	for _, hook := range hooks {
		hook(to, from)
	}
	return to, nil
}

// supersede takes the next generation and cancels the pending load. Must be
// called with n.mu held.
func (n *Navigator) supersede() uint64 {
	n.gen++
	if n.cancel != nil {
		n.cancel()
	}
	return n.gen
}

// commit must be called with n.mu held.
func (n *Navigator) commit(to Location, m mode, target int) {
	switch {
	case m == modeTraverse && target < len(n.history) && n.history[target].Href == to.Href:
		n.history[target] = to
		n.index = target
	case m == modeReplace && n.index >= 0:
		n.history[n.index] = to
	default:
		n.history = append(n.history[:n.index+1], to)
		n.index = len(n.history) - 1
	}
	n.current = &to
	n.scroll = Position{}
}
