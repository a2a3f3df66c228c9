package navigation

import (
	"net/url"
	"path"
	"strings"
)

// Routes describes which destinations need a session and where the gate
// sends users before and after login.
type Routes struct {
	// LoginPath is the login entry point
	LoginPath string
	// DefaultLanding is used after login when nothing is pending
	DefaultLanding string
	// LogoutLanding is where the user goes after logging out
	LogoutLanding string
	// Gated lists route patterns that require a session. A segment
	// starting with ':' matches any single segment.
	Gated []string
}

// DefaultRoutes mirrors the Postify web client
func DefaultRoutes() Routes {
	return Routes{
		LoginPath:      "/login",
		DefaultLanding: "/dashboard",
		LogoutLanding:  "/home",
		Gated:          []string{"/dashboard", "/createpost"},
	}
}

// Normalize cleans a route target. The query string and fragment are
// kept, the path is cleaned and made absolute.
func Normalize(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return "/"
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		// not a relative route; treat the raw string as a path
		return path.Clean("/" + strings.TrimLeft(target, "/"))
	}

	p := path.Clean("/" + strings.TrimLeft(u.Path, "/"))
	u.Path = p
	u.RawPath = ""
	return u.String()
}

// PathOf returns the path part of a route target, without query or fragment
func PathOf(target string) string {
	n := Normalize(target)
	if i := strings.IndexAny(n, "?#"); i >= 0 {
		return n[:i]
	}
	return n
}

// IsGated reports whether target matches one of the gated patterns
func (r Routes) IsGated(target string) bool {
	p := PathOf(target)
	for _, pattern := range r.Gated {
		if _, ok := Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Match matches a cleaned path against a pattern such as "/post/:id" and
// returns the captured parameters.
func Match(pattern, p string) (map[string]string, bool) {
	ps := splitPath(pattern)
	xs := splitPath(p)
	if len(ps) != len(xs) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range ps {
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return nil, false
			}
			v, err := url.PathUnescape(xs[i])
			if err != nil {
				v = xs[i]
			}
			params[seg[1:]] = v
			continue
		}
		if seg != xs[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
