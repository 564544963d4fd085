// Package router maps the two tour pages to and from URL-style routes.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Paths of the two pages.
const (
	MapPath      = "/"
	InteriorPath = "/splat.html"
	IDParam      = "id"
)

// ErrUnknownRoute is returned by Parse for paths that name neither page.
var ErrUnknownRoute = errors.New("router: unknown route")

// Page identifies which explorer a route shows.
type Page int

const (
	PageMap Page = iota
	PageInterior
)

func (p Page) String() string {
	switch p {
	case PageMap:
		return "map"
	case PageInterior:
		return "interior"
	}
	return fmt.Sprintf("Page(%d)", int(p))
}

// Route is a parsed navigation target. ID is only meaningful for PageInterior and may
// be empty when the query parameter was absent.
type Route struct {
	Page Page
	ID   string
}

// Map returns the route of the map page.
func Map() Route {
	return Route{Page: PageMap}
}

// Interior returns the route of the interior page for a house.
func Interior(id string) Route {
	return Route{Page: PageInterior, ID: id}
}

// InteriorURL returns "/splat.html?id=<id>" with the id query-escaped.
func InteriorURL(id string) string {
	return Interior(id).String()
}

// String formats the route as a URL path with query.
func (r Route) String() string {
	if r.Page != PageInterior {
		return MapPath
	}
	if r.ID == "" {
		return InteriorPath
	}
	return InteriorPath + "?" + IDParam + "=" + url.QueryEscape(r.ID)
}

// Parse reads a route from a path with optional query ("/", "/index.html",
// "/splat.html?id=casa3"). Scheme and host of absolute URLs are ignored.
func Parse(raw string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Route{}, fmt.Errorf("router: %w", err)
	}
	switch strings.TrimSuffix(u.Path, "/") {
	case "", "/index.html":
		return Map(), nil
	case InteriorPath:
		return Interior(strings.TrimSpace(u.Query().Get(IDParam))), nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, u.Path)
}
