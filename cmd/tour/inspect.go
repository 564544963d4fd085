package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"casatour/internal/identity"
	"casatour/internal/mapview"
	"casatour/internal/tour"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [asset]",
		Short: "Load a map model without a window and report what the map page would make clickable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tour.Configure(loadPrefs())
			defer opts.Fetcher.Close()
			cfg := opts.Map
			if len(args) == 1 {
				cfg.Asset = args[0]
			}
			return runInspect(cmd, cfg, opts)
		},
	}
}

func runInspect(cmd *cobra.Command, cfg mapview.Config, opts tour.Options) error {
	ex := mapview.New(cfg, opts.Loader, opts.Catalog)
	if err := ex.Load(cmd.Context()); err != nil {
		return fmt.Errorf("inspect %s: %w", cfg.Asset, err)
	}
	out := cmd.OutOrStdout()
	st := ex.Stats()
	fmt.Fprintf(out, "%s\n", cfg.Asset)
	fmt.Fprintf(out, "  drawables    %d\n", st.Drawables)
	fmt.Fprintf(out, "  clickable    %d\n", st.Clickable)
	fmt.Fprintf(out, "  substituted  %d\n", st.Substituted)
	fmt.Fprintf(out, "  skipped      %d\n", st.Skipped)
	fmt.Fprintf(out, "  anchored     %d\n", st.Anchored)

	seen := make(map[string]int)
	for _, n := range ex.Registry.Nodes() {
		id, _ := identity.Resolve(n)
		seen[id]++
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h := opts.Catalog.Display(id)
		fmt.Fprintf(out, "  %-8s %-3d %s (%d objects)\n", id, h.Number, h.Name, seen[id])
	}
	return nil
}
