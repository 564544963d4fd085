package engineconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// Window holds the host window settings.
type Window struct {
	Title      string `json:"title"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Fullscreen bool   `json:"fullscreen"`
	TargetFPS  int    `json:"target_fps"`
}

// Locomotion tunes walking in the interior.
type Locomotion struct {
	BaseSpeed        float32 `json:"base_speed"`
	SprintMultiplier float32 `json:"sprint_multiplier"`
	EyeHeight        float32 `json:"eye_height"`
	Bound            float32 `json:"bound"` // half-size of the square walkable area on x/z
	Sensitivity      float32 `json:"look_sensitivity"`
}

// EnginePrefs holds the viewer preferences. Persisted across runs.
type EnginePrefs struct {
	ShowFPS      bool `json:"show_fps"`
	ShowMemAlloc bool `json:"show_memalloc"`
	ShowConsole  bool `json:"show_console"`

	Window Window `json:"window"`

	AssetRoot      string `json:"asset_root"` // local directory or http(s) base the asset paths are resolved against
	MapAsset       string `json:"map_asset"`
	SkyTexture     string `json:"sky_texture"`
	CatalogPath    string `json:"catalog_path,omitempty"`
	StylesheetPath string `json:"stylesheet_path,omitempty"`
	Font           string `json:"font,omitempty"` // family name looked up under assets/fonts

	Locomotion     Locomotion `json:"locomotion"`
	SupportsTouch  bool       `json:"supports_touch"`
	MaxSplatPoints int        `json:"max_splat_points"`
	MaxTextureSize int        `json:"max_texture_size"`
}

// Default returns default engine preferences (debug overlays off).
func Default() EnginePrefs {
	return EnginePrefs{
		Window: Window{
			Title:     "Centro Histórico de Puebla",
			Width:     1280,
			Height:    800,
			TargetFPS: 60,
		},
		AssetRoot:   "public",
		MapAsset:    "/models/mapaPuebla.glb",
		SkyTexture:  "/textures/sky_360.png",
		CatalogPath: "config/catalog.yaml",
		Locomotion: Locomotion{
			BaseSpeed:        0.9,
			SprintMultiplier: 1.5,
			EyeHeight:        0,
			Bound:            50,
			Sensitivity:      0.002,
		},
		MaxSplatPoints: 400_000,
		MaxTextureSize: 2048,
	}
}

// Load reads engine preferences from config/engine.json.
func Load() (EnginePrefs, error) {
	return LoadFrom(EngineConfigPath)
}

// LoadFrom reads engine preferences from path. Fields missing from the file keep their
// defaults. If the file is missing or invalid, returns Default() and does not create a file.
func LoadFrom(path string) (EnginePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p.sanitized(), nil
}

// sanitized replaces values that would break the viewer with their defaults.
func (p EnginePrefs) sanitized() EnginePrefs {
	d := Default()
	if p.Window.Width <= 0 || p.Window.Height <= 0 {
		p.Window.Width, p.Window.Height = d.Window.Width, d.Window.Height
	}
	if p.Window.TargetFPS <= 0 {
		p.Window.TargetFPS = d.Window.TargetFPS
	}
	if p.Locomotion.BaseSpeed <= 0 {
		p.Locomotion.BaseSpeed = d.Locomotion.BaseSpeed
	}
	if p.Locomotion.SprintMultiplier <= 0 {
		p.Locomotion.SprintMultiplier = d.Locomotion.SprintMultiplier
	}
	if p.Locomotion.Bound <= 0 {
		p.Locomotion.Bound = d.Locomotion.Bound
	}
	if p.Locomotion.Sensitivity <= 0 {
		p.Locomotion.Sensitivity = d.Locomotion.Sensitivity
	}
	if p.MapAsset == "" {
		p.MapAsset = d.MapAsset
	}
	return p
}

// Save writes engine preferences to config/engine.json.
func Save(p EnginePrefs) error {
	return SaveTo(EngineConfigPath, p)
}

// SaveTo writes engine preferences to path, creating the directory if needed.
func SaveTo(path string, p EnginePrefs) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
