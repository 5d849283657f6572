package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Params holds path parameters captured by a route, e.g. {"id": "42"}.
// Values are always strings; nothing is coerced.
type Params map[string]string

// State is the result of resolving a location
type State struct {
	// Path is the matched path without query or fragment
	Path string `json:"path"`

	// FullPath is Path plus the original query and fragment
	FullPath string `json:"fullPath"`

	Route  Route      `json:"route"`
	Params Params     `json:"params"`
	Query  url.Values `json:"query,omitempty"`
	Hash   string     `json:"hash,omitempty"`

	// RedirectedFrom is the requested location when a redirect rule applied
	RedirectedFrom string `json:"redirectedFrom,omitempty"`
}

// Target returns the identifier of the view to render
func (s State) Target() Target {
	return s.Route.Target
}

// Props returns the parameters forwarded to the component.
// Routes without Props forward nothing.
func (s State) Props() Params {
	out := Params{}
	if !s.Route.Props {
		return out
	}
	for k, v := range s.Params {
		out[k] = v
	}
	return out
}

// Canonical returns the location spelled the way the route table spells it:
// static segments lowercased, no trailing slash, params escaped, query and
// fragment kept. Locations that differ only in case or a trailing slash share it.
func (s State) Canonical() string {
	if s.Route.Path == "" {
		return s.FullPath
	}
	_, query, hash := splitLocation(s.FullPath)

	parts := splitPath(s.Route.Path)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if !strings.HasPrefix(part, ":") {
			out = append(out, strings.ToLower(part))
			continue
		}
		name := part[1:]
		if idx := strings.IndexByte(name, '('); idx >= 0 {
			// Catch-all captures keep their slashes
			out = append(out, s.Params[name[:idx]])
			continue
		}
		out = append(out, escapeSegment(s.Params[name]))
	}
	return joinLocation("/"+strings.Join(out, "/"), query, hash)
}

// Redirected reports whether the location was rewritten by a redirect rule
func (s State) Redirected() bool {
	return s.RedirectedFrom != ""
}

type segmentKind int

const (
	segStatic segmentKind = iota
	segParam
	segCatchAll
)

type segment struct {
	kind  segmentKind
	value string // lowercased literal, or parameter name
}

type compiledRoute struct {
	route    Route
	segments []segment
}

// Router resolves locations against an immutable route table
type Router struct {
	routes []compiledRoute
}

// New compiles routes. The table must end up resolving every path:
// redirect targets have to match a rendering route.
func New(routes []Route) (*Router, error) {
	r := &Router{routes: make([]compiledRoute, 0, len(routes))}

	for i, route := range routes {
		if route.Path == "" || route.Path[0] != '/' {
			return nil, fmt.Errorf("route %d: path must start with '/': %q", i, route.Path)
		}
		if (route.Target == "") == (route.Redirect == "") {
			return nil, fmt.Errorf("route %d (%s): exactly one of target or redirect is required", i, route.Path)
		}
		segments, err := compilePattern(route.Path)
		if err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, route.Path, err)
		}
		r.routes = append(r.routes, compiledRoute{route: route, segments: segments})
	}

	for _, cr := range r.routes {
		if cr.route.Redirect == "" {
			continue
		}
		path, _, _ := splitLocation(cr.route.Redirect)
		target, _, ok := r.match(splitPath(path))
		if !ok || target.route.Redirect != "" {
			return nil, fmt.Errorf("route %s: redirect target %q does not resolve to a view", cr.route.Path, cr.route.Redirect)
		}
	}

	return r, nil
}

// Routes returns a copy of the table in match order
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	for i, cr := range r.routes {
		out[i] = cr.route
	}
	return out
}

// Resolve maps a location (path with optional query and fragment) to a State.
// It has no side effects and always returns the same State for the same input.
// A location that no rendering route matches resolves to the redirect target;
// a table without a catch-all falls back to Root.
func (r *Router) Resolve(location string) State {
	path, query, hash := splitLocation(location)

	cr, params, ok := r.match(splitPath(path))
	if ok && cr.route.Redirect == "" {
		return State{
			Path:     path,
			FullPath: joinLocation(path, query, hash),
			Route:    cr.route,
			Params:   params,
			Query:    parseQuery(query),
			Hash:     hash,
		}
	}

	redirect := Root
	if ok {
		redirect = cr.route.Redirect
	}
	target := r.resolveRedirect(redirect)
	target.RedirectedFrom = joinLocation(path, query, hash)
	return target
}

func (r *Router) resolveRedirect(location string) State {
	path, query, hash := splitLocation(location)
	cr, params, ok := r.match(splitPath(path))
	if !ok || cr.route.Redirect != "" {
		// Only reachable for tables without a view at Root
		return State{Path: path, FullPath: joinLocation(path, query, hash), Params: Params{}}
	}
	return State{
		Path:     path,
		FullPath: joinLocation(path, query, hash),
		Route:    cr.route,
		Params:   params,
		Query:    parseQuery(query),
		Hash:     hash,
	}
}

func (r *Router) match(parts []string) (compiledRoute, Params, bool) {
	for _, cr := range r.routes {
		if params, ok := matchSegments(cr.segments, parts); ok {
			return cr, params, true
		}
	}
	return compiledRoute{}, nil, false
}

func matchSegments(segments []segment, parts []string) (Params, bool) {
	params := Params{}
	for i, seg := range segments {
		if seg.kind == segCatchAll {
			params[seg.value] = strings.Join(parts[min(i, len(parts)):], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		part := parts[i]
		switch seg.kind {
		case segStatic:
			if strings.ToLower(part) != seg.value {
				return nil, false
			}
		case segParam:
			if part == "" {
				return nil, false
			}
			params[seg.value] = unescapeSegment(part)
		}
	}
	if len(parts) != len(segments) {
		return nil, false
	}
	return params, true
}

func compilePattern(pattern string) ([]segment, error) {
	parts := splitPath(pattern)
	segments := make([]segment, 0, len(parts))
	seen := map[string]bool{}

	for i, part := range parts {
		if !strings.HasPrefix(part, ":") {
			if part == "" {
				return nil, fmt.Errorf("empty segment")
			}
			segments = append(segments, segment{kind: segStatic, value: strings.ToLower(part)})
			continue
		}

		name := part[1:]
		kind := segParam
		if idx := strings.IndexByte(name, '('); idx >= 0 {
			if !strings.HasPrefix(name[idx:], "(.*)") {
				return nil, fmt.Errorf("unsupported parameter pattern %q", name[idx:])
			}
			if i != len(parts)-1 {
				return nil, fmt.Errorf("catch-all parameter must be the last segment")
			}
			kind = segCatchAll
			name = name[:idx]
		}
		if !validParamName(name) {
			return nil, fmt.Errorf("invalid parameter name %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true
		segments = append(segments, segment{kind: kind, value: name})
	}

	return segments, nil
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// splitPath splits a path into segments. The trailing slash is optional: "/habits/" and
// "/habits" produce the same segments. Root has none.
func splitPath(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if len(trimmed) > 1 {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// splitLocation separates path, raw query and fragment, normalizing an empty path to Root
func splitLocation(location string) (path, query, hash string) {
	path = location
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		hash = path[idx+1:]
		path = path[:idx]
	}
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		query = path[idx+1:]
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, query, hash
}

func joinLocation(path, query, hash string) string {
	out := path
	if query != "" {
		out += "?" + query
	}
	if hash != "" {
		out += "#" + hash
	}
	return out
}

func parseQuery(raw string) url.Values {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}
	return values
}

func unescapeSegment(part string) string {
	if decoded, err := url.PathUnescape(part); err == nil {
		return decoded
	}
	return part
}

func escapeSegment(value string) string {
	return url.PathEscape(value)
}
