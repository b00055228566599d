package delivery

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/satellite/internal/server/glob"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// NotFoundPath is served with status 404 when nothing else matches.
const NotFoundPath = "/404.html"

// Routing is the outcome of resolving a request path. It is one of
// RoutingDefault, RoutingRewrite, RoutingRedirect or RoutingNotFound.
type Routing interface {
	routing()
}

// RoutingDefault serves the asset stored at the requested path or one of
// its aliases.
type RoutingDefault struct {
	Asset *models.Asset
}

// RoutingRewrite serves another asset under the requested path.
type RoutingRewrite struct {
	Asset      *models.Asset
	Source     string
	StatusCode int
}

// RoutingRedirect answers with a redirection.
type RoutingRedirect struct {
	Source   string
	Redirect models.Redirect
}

// RoutingNotFound means no asset answers the path.
type RoutingNotFound struct{}

func (RoutingDefault) routing()  {}
func (RoutingRewrite) routing()  {}
func (RoutingRedirect) routing() {}
func (RoutingNotFound) routing() {}

// aliases lists the full paths tried for an exact match, in order.
func aliases(p string) []string {
	if p == "" || p == "/" {
		return []string{"/index.html"}
	}
	if strings.HasSuffix(p, "/") {
		return []string{p + "index.html"}
	}
	out := []string{p}
	if !strings.HasSuffix(p, ".html") {
		out = append(out, p+".html", p+"/index.html")
	}
	return out
}

// lookup returns the first readable asset among paths whose access token
// matches.
func (s *Service) lookup(ctx context.Context, principal, collection, accessToken string, paths ...string) (*models.Asset, error) {
	for _, p := range paths {
		a, err := s.assets.Readable(ctx, principal, collection, p)
		if err != nil {
			return nil, err
		}
		if a != nil && tokenMatches(a, accessToken) {
			return a, nil
		}
	}
	return nil, nil
}

func tokenMatches(a *models.Asset, accessToken string) bool {
	return a.Key.Token == nil || *a.Key.Token == accessToken
}

// Resolve maps a request path to a Routing: exact path with aliases, then
// redirects, then rewrites (most specific glob first), then the 404 page.
func (s *Service) Resolve(ctx context.Context, principal, collection, reqPath, accessToken string, cfg *models.StorageConfig) (Routing, error) {
	a, err := s.lookup(ctx, principal, collection, accessToken, aliases(reqPath)...)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return RoutingDefault{Asset: a}, nil
	}

	if len(cfg.Redirects) > 0 {
		set, err := glob.NewSet(keys(cfg.Redirects))
		if err != nil {
			return nil, err
		}
		if src, ok := set.First(reqPath); ok {
			return RoutingRedirect{Source: src, Redirect: cfg.Redirects[src]}, nil
		}
	}

	if len(cfg.Rewrites) > 0 {
		set, err := glob.NewSet(keys(cfg.Rewrites))
		if err != nil {
			return nil, err
		}
		if src, ok := set.First(reqPath); ok {
			a, err := s.lookup(ctx, principal, collection, accessToken, cfg.Rewrites[src])
			if err != nil {
				return nil, err
			}
			if a != nil {
				return RoutingRewrite{Asset: a, Source: src, StatusCode: 200}, nil
			}
		}
	}

	a, err = s.lookup(ctx, principal, collection, accessToken, NotFoundPath)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return RoutingRewrite{Asset: a, Source: NotFoundPath, StatusCode: 404}, nil
	}
	return RoutingNotFound{}, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
