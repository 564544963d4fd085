// Package loader turns scene assets into scene graphs. It fetches bytes through the
// download package, undoes transport compression, decodes glTF/GLB with qmuntal/gltf and
// decodes textures. Load failures never panic out of the package; they come back as
// *LoadError.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"casatour/internal/download"
	"casatour/internal/logger"
	"casatour/internal/scene"
)

// ErrUnsupported is the cause of a LoadError for assets whose extension has no decoder.
var ErrUnsupported = errors.New("loader: unsupported asset format")

// DefaultMaxTextureSize is the largest texture edge kept as-is; bigger images are downsized.
const DefaultMaxTextureSize = 2048

// LoadError reports why an asset could not be turned into a scene.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SceneLoader is what pages depend on; tests substitute fakes.
type SceneLoader interface {
	Load(ctx context.Context, path string, progress download.Progress) (*scene.Node, error)
}

// Loader loads glTF and GLB scenes, optionally gzip or zstd compressed.
type Loader struct {
	Fetcher        *download.Fetcher
	MaxTextureSize int
	log            *logrus.Entry
}

// New returns a loader reading assets through f.
func New(f *download.Fetcher) *Loader {
	return &Loader{Fetcher: f, MaxTextureSize: DefaultMaxTextureSize, log: logger.For("loader")}
}

// Load fetches and decodes the asset at src. Progress covers the transfer and reaches 1
// before decoding starts. Every failure, including a decoder panic, is a *LoadError.
func (l *Loader) Load(ctx context.Context, src string, progress download.Progress) (root *scene.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			root = nil
			err = &LoadError{Path: src, Cause: fmt.Errorf("decoder panic: %v", rec)}
		}
	}()

	data, err := l.Fetcher.Open(ctx, src, progress)
	if err != nil {
		return nil, &LoadError{Path: src, Cause: err}
	}
	data, name, err := Decompress(src, data)
	if err != nil {
		return nil, &LoadError{Path: src, Cause: err}
	}

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".glb", ".gltf":
		root, err = l.decodeGLTF(ctx, name, data)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, &LoadError{Path: src, Cause: err}
	}
	l.log.WithField("asset", src).Info("scene loaded")
	return root, nil
}

// Decompress strips a trailing .gz or .zst from name and inflates data accordingly.
// Other names are returned unchanged.
func Decompress(name string, data []byte) ([]byte, string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, name, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, name, fmt.Errorf("gzip: %w", err)
		}
		return out, name[:len(name)-len(".gz")], nil
	case strings.HasSuffix(lower, ".zst"):
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, name, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		out, err := zr.DecodeAll(data, nil)
		if err != nil {
			return nil, name, fmt.Errorf("zstd: %w", err)
		}
		return out, name[:len(name)-len(".zst")], nil
	}
	return data, name, nil
}
