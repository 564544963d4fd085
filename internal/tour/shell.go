// Package tour hosts the two pages behind the router: it owns the current route, builds
// the page for it, forwards input and switches pages when a page asks to navigate.
package tour

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/input"
	"casatour/internal/interior"
	"casatour/internal/loader"
	"casatour/internal/logger"
	"casatour/internal/loop"
	"casatour/internal/mapview"
	"casatour/internal/router"
)

// Page is one explorer as the shell drives it.
type Page interface {
	loop.Page
	HandleEvent(ev input.Event)
	Navigation() (string, bool)
	StartLoad(ctx context.Context)
}

// Renderer draws both pages.
type Renderer interface {
	mapview.Renderer
	interior.Renderer
}

// Options wires the shell to its collaborators.
type Options struct {
	Map      mapview.Config
	Interior interior.Config
	Catalog  *catalog.Catalog
	Loader   loader.SceneLoader
	Assets   interior.Assets
	Renderer Renderer          // nil runs headless
	Fetcher  *download.Fetcher // set by Configure; closed by Shell.Close
}

// Shell is the running tour.
type Shell struct {
	Driver *loop.Driver

	opts   Options
	log    *logrus.Entry
	parent context.Context
	cancel context.CancelFunc
	route  router.Route
	page   Page

	width, height float32
}

// New returns a shell with no page open.
func New(ctx context.Context, opts Options) *Shell {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	return &Shell{
		Driver: loop.NewDriver(),
		opts:   opts,
		log:    logger.For("tour"),
		parent: ctx,
	}
}

// Route returns the route of the open page.
func (s *Shell) Route() router.Route {
	return s.route
}

// Page returns the open page, or nil before the first Open.
func (s *Shell) Page() Page {
	return s.page
}

// Open parses raw and switches to its page. The previous page's loads are cancelled.
// An unparsable route leaves the current page open.
func (s *Shell) Open(raw string) error {
	route, err := router.Parse(raw)
	if err != nil {
		s.log.WithError(err).WithField("route", raw).Warn("ignoring navigation")
		return err
	}
	s.show(route)
	return nil
}

func (s *Shell) show(route router.Route) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel

	var page Page
	switch route.Page {
	case router.PageInterior:
		ex := interior.New(s.opts.Interior, s.opts.Assets, s.opts.Catalog, route.ID)
		if s.opts.Renderer != nil {
			ex.Renderer = s.opts.Renderer
		}
		page = ex
	default:
		ex := mapview.New(s.opts.Map, s.opts.Loader, s.opts.Catalog)
		if s.opts.Renderer != nil {
			ex.Renderer = s.opts.Renderer
		}
		page = ex
	}
	if s.width > 0 && s.height > 0 {
		page.HandleEvent(input.Event{Kind: input.Resize, X: s.width, Y: s.height})
	}
	page.StartLoad(ctx)

	s.route = route
	s.page = page
	s.log.WithFields(logrus.Fields{"route": route.String(), "page": route.Page}).Info("page opened")
}

// Frame runs one frame: events go to the open page, the page ticks, and a requested
// navigation switches pages before the next frame.
func (s *Shell) Frame(events []input.Event, dt float32) loop.Result {
	if s.page == nil {
		return loop.Fail("frame", fmt.Errorf("tour: no page open"))
	}
	for _, ev := range events {
		if ev.Kind == input.Resize {
			s.width, s.height = ev.X, ev.Y
		}
		s.page.HandleEvent(ev)
	}
	res := s.Driver.Step(s.page, dt)
	if target, ok := s.page.Navigation(); ok {
		_ = s.Open(target)
	}
	return res
}

// Close cancels any load still running and releases the asset bundle.
func (s *Shell) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.opts.Fetcher != nil {
		if err := s.opts.Fetcher.Close(); err != nil {
			s.log.WithError(err).Warn("closing assets")
		}
	}
}
