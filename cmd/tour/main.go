package main

import (
	"os"

	"github.com/spf13/cobra"

	"casatour/internal/env"
	"casatour/internal/logger"
)

func main() {
	malformed, envErr := env.Load(".env")
	logger.Init()
	defer logger.Close()
	if envErr != nil {
		logger.For("env").WithError(envErr).Warn("could not read .env")
	}
	for _, m := range malformed {
		logger.For("env").WithField("line", m.Line).Warnf("ignoring malformed .env entry %q", m.Text)
	}

	root := &cobra.Command{
		Use:          "tour",
		Short:        "Explore the historic district map and walk through its houses",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, "/")
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "engine config file (default config/engine.json)")
	root.AddCommand(mapCmd())
	root.AddCommand(interiorCmd())
	root.AddCommand(openCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(unpackCmd())
	root.AddCommand(fontCmd())
	if err := root.Execute(); err != nil {
		logger.Close()
		os.Exit(1)
	}
}
