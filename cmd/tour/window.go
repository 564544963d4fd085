package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"casatour/internal/engineconfig"
	"casatour/internal/fonts"
	"casatour/internal/graphics"
	"casatour/internal/input"
	"casatour/internal/logger"
	"casatour/internal/mapview"
	"casatour/internal/router"
	"casatour/internal/tour"
)

var configPath string

func loadPrefs() engineconfig.EnginePrefs {
	var (
		p   engineconfig.EnginePrefs
		err error
	)
	if configPath != "" {
		p, err = engineconfig.LoadFrom(configPath)
	} else {
		p, err = engineconfig.Load()
	}
	if err != nil {
		logger.For("config").WithError(err).Warn("using default engine config")
	}
	return p
}

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Open the district map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, router.Map().String())
		},
	}
}

func interiorCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "interior",
		Short: "Open one house interior",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, router.InteriorURL(id))
		},
	}
	cmd.Flags().StringVar(&id, "id", "casa1", "house id, e.g. casa4")
	return cmd
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Open a page by route, e.g. \"/splat.html?id=casa4\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := router.Parse(args[0]); err != nil {
				return err
			}
			return runWindow(cmd, args[0])
		},
	}
}

// runWindow opens the window on route and runs the tour until the window closes.
func runWindow(cmd *cobra.Command, route string) error {
	prefs := loadPrefs()
	log := logger.For("tour")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var events input.Queue
	opts := tour.Configure(prefs)
	renderer := graphics.NewRenderer(&events, opts.Map.Styles)
	renderer.Debug.ShowFPS = prefs.ShowFPS
	renderer.Debug.ShowMemAlloc = prefs.ShowMemAlloc
	renderer.Debug.ShowConsole = prefs.ShowConsole
	opts.Renderer = renderer

	shell := tour.New(ctx, opts)
	defer shell.Close()
	renderer.Status = func() []string { return status(shell) }

	poller := graphics.NewPoller(prefs.SupportsTouch)
	win := graphics.Window{
		Title:      prefs.Window.Title,
		Width:      prefs.Window.Width,
		Height:     prefs.Window.Height,
		Fullscreen: prefs.Window.Fullscreen,
		TargetFPS:  prefs.Window.TargetFPS,
	}

	opened := false
	var openErr error
	graphics.Run(win, func(dt float32) bool {
		if !opened {
			opened = true
			if font, err := fonts.Resolve(prefs.AssetRoot, prefs.Font); err == nil {
				renderer.LoadFont(font)
			} else if prefs.Font != "" {
				log.WithField("font", prefs.Font).Warn("font not found, using built-in font")
			}
			if openErr = shell.Open(route); openErr != nil {
				return false
			}
		}
		poller.Poll(&events)
		batch := events.Drain()
		for _, ev := range batch {
			if ev.Kind == input.KeyDown && ev.Key == input.KeyF1 {
				renderer.Debug.Toggle()
			}
		}
		shell.Frame(batch, dt)
		return true
	})
	renderer.Unload()
	return openErr
}

func status(s *tour.Shell) []string {
	lines := []string{
		fmt.Sprintf("route %s", s.Route()),
		fmt.Sprintf("frames %d  failures %d  repairs %d", s.Driver.Stats.Frames, s.Driver.Stats.Failures, s.Driver.Stats.Repairs),
	}
	if m, ok := s.Page().(*mapview.Explorer); ok {
		st := m.Stats()
		lines = append(lines,
			fmt.Sprintf("hover %s  cursor %s", m.Resolver, m.Resolver.Cursor()),
			fmt.Sprintf("clickable %d  substituted %d  skipped %d", st.Clickable, st.Substituted, st.Skipped),
		)
	}
	return lines
}
