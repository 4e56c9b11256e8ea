package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNotFound     = errors.New("route not found")
	ErrUnknownRoute = errors.New("unknown route name")
	ErrMissingParam = errors.New("missing route parameter")
	ErrInvalidRoute = errors.New("invalid route")
)

// Route names.
const (
	Home    = "home"
	About   = "about"
	Privacy = "privacy"
	Layout  = "layout"
	Session = "session"
)

// LayoutParam is the path parameter of the session route.
const LayoutParam = "layout"

type RouteKind int

const (
	// Static routes match their path literally.
	Static RouteKind = iota
	// Pattern routes contain at least one ":name" segment.
	Pattern
)

func (k RouteKind) String() string {
	if k == Pattern {
		return "pattern"
	}
	return "static"
}

// Route declares a path and the view it leads to. Lazy views are fetched on
// first visit instead of at startup.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Lazy bool   `json:"lazy"`
}

// DefaultRoutes is the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: Home},
		{Path: "/about", Name: About, Lazy: true},
		{Path: "/privacy", Name: Privacy, Lazy: true},
		{Path: "/layout", Name: Layout, Lazy: true},
		{Path: "/session/:" + LayoutParam, Name: Session, Lazy: true},
	}
}

// Params holds captured path parameters by name.
type Params map[string]string

func (p Params) Get(name string) string {
	return p[name]
}

// Match is a successful resolution.
type Match struct {
	Route  Route  `json:"-"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Params Params `json:"params"`
}

type segment struct {
	literal string
	param   string
}

type compiled struct {
	route    Route
	kind     RouteKind
	segments []segment
}

// Table is an immutable set of routes under a base path. It is safe for
// concurrent use.
type Table struct {
	base    string
	routes  []*compiled
	static  map[string]*compiled
	pattern []*compiled
	byName  map[string]*compiled
}

// NewTable compiles routes under base ("" or "/" for none).
func NewTable(base string, routes ...Route) (*Table, error) {
	t := &Table{
		base:   normalizeBase(base),
		static: make(map[string]*compiled),
		byName: make(map[string]*compiled),
	}
	shapes := make(map[string]string)

	for _, r := range routes {
		c, err := compile(r)
		if err != nil {
			return nil, err
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRoute, r.Name)
		}
		shape := c.shape()
		if other, dup := shapes[shape]; dup {
			return nil, fmt.Errorf("%w: %q and %q match the same paths", ErrInvalidRoute, other, r.Name)
		}
		shapes[shape] = r.Name

		t.routes = append(t.routes, c)
		t.byName[r.Name] = c
		if c.kind == Static {
			t.static[shape] = c
		} else {
			t.pattern = append(t.pattern, c)
		}
	}
	return t, nil
}

func compile(r Route) (*compiled, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("%w: empty name for %q", ErrInvalidRoute, r.Path)
	}
	if !strings.HasPrefix(r.Path, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidRoute, r.Path)
	}

	c := &compiled{route: r, kind: Static}
	seen := make(map[string]bool)
	for _, part := range splitPath(r.Path) {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidRoute, r.Path)
		}
		if !strings.HasPrefix(part, ":") {
			c.segments = append(c.segments, segment{literal: part})
			continue
		}
		name := part[1:]
		if name == "" || seen[name] {
			return nil, fmt.Errorf("%w: bad parameter %q in %q", ErrInvalidRoute, part, r.Path)
		}
		seen[name] = true
		c.kind = Pattern
		c.segments = append(c.segments, segment{param: name})
	}
	return c, nil
}

// shape is the lower-cased path with parameters collapsed, so two routes with
// equal shapes would match the same paths.
func (c *compiled) shape() string {
	parts := make([]string, len(c.segments))
	for i, s := range c.segments {
		if s.param != "" {
			parts[i] = ":"
		} else {
			parts[i] = strings.ToLower(s.literal)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// match expects segments already unescaped.
func (c *compiled) match(parts []string) (Params, bool) {
	if len(parts) != len(c.segments) {
		return nil, false
	}
	params := Params{}
	for i, s := range c.segments {
		if s.param == "" {
			if !strings.EqualFold(s.literal, parts[i]) {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		params[s.param] = parts[i]
	}
	return params, true
}

// Kind reports whether the named route is static or a pattern.
func (t *Table) Kind(name string) (RouteKind, bool) {
	c, ok := t.byName[name]
	if !ok {
		return Static, false
	}
	return c.kind, true
}

// Base is the normalized base path, without a trailing slash.
func (t *Table) Base() string {
	return t.base
}

// Routes returns the declared routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, c := range t.routes {
		out[i] = c.route
	}
	return out
}

// Route looks up a route by name.
func (t *Table) Route(name string) (Route, bool) {
	c, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return c.route, true
}

// Resolve maps a path to a route. Query and fragment are ignored, matching is
// case-insensitive and a single trailing slash is tolerated. Each segment is
// percent-decoded before it is compared, so "/%61bout" resolves like "/about". Paths outside
// the base, and paths no route matches, fail with ErrNotFound.
func (t *Table) Resolve(path string) (Match, error) {
	rel, ok := t.strip(path)
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	parts, ok := unescapeSegments(splitPath(rel))
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if key, ok := staticKey(parts); ok {
		if c, ok := t.static[key]; ok {
			return Match{Route: c.route, Name: c.route.Name, Path: rel, Params: Params{}}, nil
		}
	}
	for _, c := range t.pattern {
		if params, ok := c.match(parts); ok {
			return Match{Route: c.route, Name: c.route.Name, Path: rel, Params: params}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Href builds the full path, base included, for a named route.
func (t *Table) Href(name string, params Params) (string, error) {
	c, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	parts := make([]string, len(c.segments))
	for i, s := range c.segments {
		if s.param == "" {
			parts[i] = s.literal
			continue
		}
		value := params.Get(s.param)
		if value == "" {
			return "", fmt.Errorf("%w: %q for route %q", ErrMissingParam, s.param, name)
		}
		parts[i] = url.PathEscape(value)
	}
	return t.base + "/" + strings.Join(parts, "/"), nil
}

// strip removes query, fragment, base and one trailing slash. The result
// always starts with "/".
func (t *Table) strip(path string) (string, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if t.base != "" {
		switch {
		case strings.EqualFold(path, t.base):
			path = "/"
		case len(path) > len(t.base) && strings.EqualFold(path[:len(t.base)], t.base) && path[len(t.base)] == '/':
			path = path[len(t.base):]
		default:
			return "", false
		}
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path, true
}

func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(base, "/")
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// unescapeSegments percent-decodes each segment on its own, so an encoded "/"
// stays inside its segment.
func unescapeSegments(parts []string) ([]string, bool) {
	out := make([]string, len(parts))
	for i, part := range parts {
		value, err := url.PathUnescape(part)
		if err != nil {
			return nil, false
		}
		out[i] = value
	}
	return out, true
}

// staticKey is the lookup key of decoded segments in the static map. Segments
// holding a decoded "/" can never equal a static literal.
func staticKey(parts []string) (string, bool) {
	for _, part := range parts {
		if strings.Contains(part, "/") {
			return "", false
		}
	}
	return strings.ToLower("/" + strings.Join(parts, "/")), true
}
