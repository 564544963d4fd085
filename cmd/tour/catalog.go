package main

import (
	"github.com/spf13/cobra"

	"casatour/internal/tour"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the effective house catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tour.Configure(loadPrefs())
			data, err := opts.Catalog.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
