// Package views maps Postify routes to renderable results. A route that
// resolves here is what the CLI shows after the navigation gate has
// decided the destination.
package views

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/navigation"
	"github.com/felixgeelhaar/postify/internal/ux"
)

// Params are the path parameters and query values of a resolved route
type Params map[string]string

// Result is a rendered view. Text output goes through RenderText; JSON and
// YAML output marshal the value itself.
type Result interface {
	ux.TextRenderer
}

// Handler builds the view for a resolved route
type Handler func(ctx context.Context, params Params) (Result, error)

// Route is one entry of the route table
type Route struct {
	Pattern string
	Title   string
	Handler Handler
}

// Match is a resolved route
type Match struct {
	Route Route
	// Path is the canonical path after alias resolution
	Path string
	// Requested is the target as given
	Requested string
	Params    Params
}

// Session is what views need to know about the current user
type Session interface {
	IsAuthenticated() bool
	UserID() string
}

// Registry is the route table
type Registry struct {
	client  *api.Client
	session Session
	routes  []Route
	aliases map[string]string
}

// NewRegistry builds the route table of the Postify client
func NewRegistry(client *api.Client, sess Session) *Registry {
	r := &Registry{
		client:  client,
		session: sess,
		aliases: map[string]string{
			"/":        "/home",
			"/about":   "/legal",
			"/privacy": "/legal",
			"/terms":   "/legal",
		},
	}

	r.routes = []Route{
		{Pattern: "/home", Title: "Home", Handler: r.home},
		{Pattern: "/explore", Title: "Explore", Handler: r.explore},
		{Pattern: "/dashboard", Title: "Dashboard", Handler: r.dashboard},
		{Pattern: "/createpost", Title: "Create post", Handler: r.createPost},
		{Pattern: "/post/:id", Title: "Post", Handler: r.post},
		{Pattern: "/author/:id", Title: "Author", Handler: r.author},
		{Pattern: "/login", Title: "Log in", Handler: r.login},
		{Pattern: "/register", Title: "Sign up", Handler: r.register},
		{Pattern: "/legal", Title: "Legal", Handler: r.legal},
	}
	return r
}

// Routes returns the route table
func (r *Registry) Routes() []Route {
	return r.routes
}

// Aliases returns the alias table sorted by source path
func (r *Registry) Aliases() [][2]string {
	out := make([][2]string, 0, len(r.aliases))
	for from, to := range r.aliases {
		out = append(out, [2]string{from, to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Resolve finds the route for target. Query values are merged into the
// params; path parameters win on conflict.
func (r *Registry) Resolve(target string) (Match, bool) {
	normalized := navigation.Normalize(target)
	p := navigation.PathOf(normalized)

	canonical := p
	if to, ok := r.aliases[p]; ok {
		canonical = to
	}

	for _, route := range r.routes {
		pathParams, ok := navigation.Match(route.Pattern, canonical)
		if !ok {
			continue
		}

		params := Params{}
		if i := strings.IndexByte(normalized, '?'); i >= 0 {
			q, _ := url.ParseQuery(strings.SplitN(normalized[i+1:], "#", 2)[0])
			for k := range q {
				params[k] = q.Get(k)
			}
		}
		for k, v := range pathParams {
			params[k] = v
		}
		if canonical != p {
			params["alias"] = p
		}

		return Match{Route: route, Path: canonical, Requested: normalized, Params: params}, true
	}
	return Match{}, false
}

// Render resolves target and builds its view
func (r *Registry) Render(ctx context.Context, target string) (Result, error) {
	m, ok := r.Resolve(target)
	if !ok {
		return nil, errors.NewRouteNotFoundError(navigation.PathOf(target))
	}
	return m.Route.Handler(ctx, m.Params)
}
