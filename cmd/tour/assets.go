package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"casatour/internal/archive"
	"casatour/internal/download"
	"casatour/internal/engineconfig"
	"casatour/internal/googlefonts"
	"casatour/internal/logger"
)

func unpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <bundle.zip> [dir]",
		Short: "Extract an asset bundle into the asset root (or dir)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := loadPrefs().AssetRoot
			if len(args) == 2 {
				dest = args[1]
			}
			if archive.IsBundle(dest) {
				return fmt.Errorf("unpack: asset root %s is itself a bundle; pass a directory", dest)
			}
			files, err := archive.Unzip(args[0], dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files into %s\n", len(files), dest)
			return nil
		},
	}
}

func fontCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "font <family>",
		Short: "Download a Google Fonts family into the asset root and use it for overlay text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := loadPrefs()
			if archive.IsBundle(prefs.AssetRoot) {
				return fmt.Errorf("font: asset root %s is a bundle; fonts need a directory", prefs.AssetRoot)
			}
			u, err := googlefonts.New().DownloadURLByFamily(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			saved, err := download.New(prefs.AssetRoot).Save(cmd.Context(), u, filepath.Join(prefs.AssetRoot, "fonts"), nil)
			if err != nil {
				return err
			}
			prefs.Font = args[0]
			path := configPath
			if path == "" {
				path = engineconfig.EngineConfigPath
			}
			if err := engineconfig.SaveTo(path, prefs); err != nil {
				return err
			}
			logger.For("fonts").WithField("path", saved).Info("font installed")
			fmt.Fprintln(cmd.OutOrStdout(), saved)
			return nil
		},
	}
}
