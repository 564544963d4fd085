// Package archive reads tour assets packed into a single zip bundle and unpacks bundles
// into an asset directory.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// IsBundle reports whether root names a zip bundle rather than a directory.
func IsBundle(root string) bool {
	return strings.EqualFold(filepath.Ext(root), ".zip")
}

// Bundle is an open zip of assets addressed by slash paths ("models/mapaPuebla.glb").
// Open is safe for concurrent use.
type Bundle struct {
	r     *zip.ReadCloser
	files map[string]*zip.File
	// prefix is a single top-level folder shared by every entry, stripped on lookup.
	prefix string
}

// OpenBundle opens the zip at zipPath.
func OpenBundle(zipPath string) (*Bundle, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	b := &Bundle{r: r, files: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		b.files[path.Clean("/" + f.Name)[1:]] = f
	}
	b.prefix = commonFolder(b.files)
	return b, nil
}

func commonFolder(files map[string]*zip.File) string {
	var prefix string
	for name := range files {
		i := strings.IndexByte(name, '/')
		if i < 0 {
			return ""
		}
		if prefix == "" {
			prefix = name[:i+1]
		} else if name[:i+1] != prefix {
			return ""
		}
	}
	return prefix
}

// Open returns the entry for name (site-absolute paths are accepted) and its size.
func (b *Bundle) Open(name string) (io.ReadCloser, int64, error) {
	clean := path.Clean("/" + filepath.ToSlash(name))[1:]
	f, ok := b.files[clean]
	if !ok {
		f, ok = b.files[b.prefix+clean]
	}
	if !ok {
		return nil, 0, fmt.Errorf("bundle: %s: %w", name, os.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, 0, fmt.Errorf("bundle: %s: %w", name, err)
	}
	return rc, int64(f.UncompressedSize64), nil
}

// Close releases the zip file.
func (b *Bundle) Close() error {
	return b.r.Close()
}

// Unzip extracts zipPath into destDir, preserving directory structure.
// destDir is created if needed. Entries that would escape destDir are skipped.
// Returns the list of extracted file paths.
func Unzip(zipPath, destDir string) (extracted []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range r.File {
		dest := filepath.Clean(filepath.Join(destDir, f.Name))
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		if !strings.HasPrefix(absDest, absDir+string(os.PathSeparator)) && absDest != absDir {
			continue // skip path escape
		}
		if f.FileInfo().IsDir() {
			_ = os.MkdirAll(dest, 0755)
			continue
		}
		if err := extract(f, dest); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extract(f *zip.File, dest string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, out.Close()) }()
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(out, rc)
	return err
}
