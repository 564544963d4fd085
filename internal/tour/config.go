package tour

import (
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/catalog"
	"casatour/internal/download"
	"casatour/internal/engineconfig"
	"casatour/internal/interior"
	"casatour/internal/loader"
	"casatour/internal/locomotion"
	"casatour/internal/logger"
	"casatour/internal/mapview"
	"casatour/internal/ui"
)

// Configure builds shell options from the saved preferences: the catalog, the stylesheet,
// the asset fetcher and both page configs. Catalog and stylesheet problems are logged and
// replaced by the built-in versions so the tour always opens.
func Configure(p engineconfig.EnginePrefs) Options {
	log := logger.For("tour")

	cat, err := catalog.Load(p.CatalogPath)
	if err != nil {
		log.WithError(err).Warn("catalog override ignored")
		cat = catalog.Default()
	}
	styles, err := ui.LoadStylesheet(p.StylesheetPath)
	if err != nil {
		log.WithError(err).WithField("path", p.StylesheetPath).Warn("stylesheet ignored")
	}

	fetcher := download.New(p.AssetRoot)
	l := loader.New(fetcher)
	assets := interior.NewFileAssets(fetcher)
	if p.MaxTextureSize > 0 {
		l.MaxTextureSize = p.MaxTextureSize
		assets.MaxTextureSize = p.MaxTextureSize
	}

	m := mapview.DefaultConfig()
	m.Asset = p.MapAsset
	m.Styles = styles

	in := interior.DefaultConfig()
	if p.SkyTexture != "" {
		in.Sky = p.SkyTexture
	}
	if p.MaxSplatPoints > 0 {
		in.MaxPoints = p.MaxSplatPoints
	}
	in.Locomotion = locomotionConfig(p.Locomotion)
	in.Sensitivity = p.Locomotion.Sensitivity
	in.SupportsTouch = p.SupportsTouch
	in.Styles = styles

	return Options{
		Map:      m,
		Interior: in,
		Catalog:  cat,
		Loader:   l,
		Assets:   assets,
		Fetcher:  fetcher,
	}
}

func locomotionConfig(l engineconfig.Locomotion) locomotion.Config {
	return locomotion.Config{
		BaseSpeed:        l.BaseSpeed,
		SprintMultiplier: l.SprintMultiplier,
		EyeHeight:        l.EyeHeight,
		Bounds: locomotion.Bounds{
			Min: mgl32.Vec2{-l.Bound, -l.Bound},
			Max: mgl32.Vec2{l.Bound, l.Bound},
		},
	}
}
