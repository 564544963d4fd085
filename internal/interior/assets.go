package interior

import (
	"context"
	"fmt"
	"path"
	"strings"

	"casatour/internal/download"
	"casatour/internal/loader"
	"casatour/internal/scene"
	"casatour/internal/splat"
)

// Assets fetches what the interior page shows.
type Assets interface {
	Cloud(ctx context.Context, src string, progress download.Progress) (*splat.Cloud, error)
	Sky(ctx context.Context, src string) (*scene.Texture, error)
}

// FileAssets reads captures and sky images through a fetcher. Captures may be gzip or
// zstd compressed.
type FileAssets struct {
	Fetcher        *download.Fetcher
	MaxTextureSize int
}

// NewFileAssets returns assets served from f with the default texture cap.
func NewFileAssets(f *download.Fetcher) *FileAssets {
	return &FileAssets{Fetcher: f, MaxTextureSize: loader.DefaultMaxTextureSize}
}

// Cloud downloads and decodes a PLY capture.
func (a *FileAssets) Cloud(ctx context.Context, src string, progress download.Progress) (*splat.Cloud, error) {
	data, err := a.Fetcher.Open(ctx, src, progress)
	if err != nil {
		return nil, &loader.LoadError{Path: src, Cause: err}
	}
	data, name, err := loader.Decompress(src, data)
	if err != nil {
		return nil, &loader.LoadError{Path: src, Cause: err}
	}
	if ext := strings.ToLower(path.Ext(name)); ext != ".ply" {
		return nil, &loader.LoadError{Path: src, Cause: fmt.Errorf("%w: %q", loader.ErrUnsupported, ext)}
	}
	cloud, err := splat.Decode(data)
	if err != nil {
		return nil, &loader.LoadError{Path: src, Cause: err}
	}
	return cloud, nil
}

// Sky downloads and decodes an equirectangular background image.
func (a *FileAssets) Sky(ctx context.Context, src string) (*scene.Texture, error) {
	data, err := a.Fetcher.Open(ctx, src, nil)
	if err != nil {
		return nil, err
	}
	img, err := loader.DecodeTexture(data, a.MaxTextureSize)
	if err != nil {
		return nil, err
	}
	return &scene.Texture{Name: src, Image: img}, nil
}
