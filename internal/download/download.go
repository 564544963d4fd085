// Package download fetches asset bytes from the local asset root or over HTTP, reporting
// fractional progress while it reads.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"casatour/internal/archive"
)

const defaultUserAgent = "casatour/1.0"

// Progress receives the fraction of the transfer completed, in [0, 1]. It is called from
// the goroutine doing the transfer.
type Progress func(fraction float64)

// StatusError is returned when a server answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download: %s: HTTP %d", e.URL, e.Code)
}

// Fetcher resolves asset sources. Paths such as "/models/mapaPuebla.glb" are read from Root;
// http and https URLs are fetched with Client.
// A Root ending in .zip is read as an asset bundle.
type Fetcher struct {
	Root      string
	Client    *http.Client
	UserAgent string

	bundleOnce sync.Once
	bundle     *archive.Bundle
	bundleErr  error
}

// New returns a fetcher rooted at root with a 60s HTTP timeout.
func New(root string) *Fetcher {
	return &Fetcher{
		Root:      root,
		Client:    &http.Client{Timeout: 60 * time.Second},
		UserAgent: defaultUserAgent,
	}
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve maps a site-absolute or relative asset path to a file under Root.
func (f *Fetcher) Resolve(src string) string {
	if f.Root == "" {
		return filepath.FromSlash(src)
	}
	clean := filepath.Clean("/" + filepath.FromSlash(src))
	return filepath.Join(f.Root, clean)
}

// Open returns the full contents of src. progress, if non-nil, is called as bytes arrive
// and always at least once with 1 on success.
func (f *Fetcher) Open(ctx context.Context, src string, progress Progress) ([]byte, error) {
	rc, size, err := f.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(&progressReader{r: rc, total: size, fn: progress})
	if err != nil {
		return nil, fmt.Errorf("download: read %s: %w", src, err)
	}
	if progress != nil {
		progress(1)
	}
	return data, nil
}

func (f *Fetcher) open(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	if src == "" {
		return nil, 0, errors.New("download: empty source")
	}
	if !IsRemote(src) && archive.IsBundle(f.Root) {
		f.bundleOnce.Do(func() { f.bundle, f.bundleErr = archive.OpenBundle(f.Root) })
		if f.bundleErr != nil {
			return nil, 0, fmt.Errorf("download: %w", f.bundleErr)
		}
		rc, size, err := f.bundle.Open(src)
		if err != nil {
			return nil, 0, fmt.Errorf("download: %w", err)
		}
		return rc, size, nil
	}
	if !IsRemote(src) {
		path := f.Resolve(src)
		file, err := os.Open(path)
		if err != nil {
			return nil, 0, fmt.Errorf("download: %w", err)
		}
		var size int64
		if st, err := file.Stat(); err == nil {
			size = st.Size()
		}
		return file, size, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, &StatusError{URL: src, Code: resp.StatusCode}
	}
	return resp.Body, resp.ContentLength, nil
}

// Close releases the asset bundle, if one was opened.
func (f *Fetcher) Close() error {
	if f.bundle != nil {
		return f.bundle.Close()
	}
	return nil
}

// Save fetches url and stores it under destDir. The file name comes from
// Content-Disposition or the URL path; the extension from the URL or Content-Type.
// It returns the path of the saved file.
func (f *Fetcher) Save(ctx context.Context, url, destDir string, progress Progress) (savedPath string, err error) {
	if !IsRemote(url) {
		return "", fmt.Errorf("download: not a URL: %q", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	ext := extensionFromURL(url)
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
	}
	if ext == "" {
		ext = ".bin"
	}
	name := filenameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filenameFromURL(url)
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}

	savedPath = filepath.Join(destDir, name)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	out, err := os.Create(savedPath)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}); err != nil {
		_ = os.Remove(savedPath)
		return "", fmt.Errorf("download: %w", err)
	}
	if progress != nil {
		progress(1)
	}
	return savedPath, nil
}

// progressReader reports read/total after each read when the total is known.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 && n > 0 {
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.fn(frac)
	}
	return n, err
}

func filenameFromContentDisposition(cd string) string {
	cd = strings.TrimSpace(cd)
	if i := strings.Index(cd, "filename*=UTF-8''"); i >= 0 {
		s := cd[i+len("filename*=UTF-8''"):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		return strings.Trim(s, "\"")
	}
	if i := strings.Index(cd, "filename="); i >= 0 {
		s := cd[i+len("filename="):]
		if j := strings.IndexAny(s, ";\r\n"); j >= 0 {
			s = s[:j]
		}
		return strings.Trim(s, "\" ")
	}
	return ""
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch ct {
	case "model/gltf-binary":
		return ".glb"
	case "model/gltf+json":
		return ".gltf"
	case "application/ply", "model/ply":
		return ".ply"
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "application/gzip", "application/x-gzip":
		return ".gz"
	case "application/zstd":
		return ".zst"
	}
	return ""
}

var knownExts = map[string]bool{
	".glb": true, ".gltf": true, ".ply": true, ".splat": true,
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".gz": true, ".zst": true,
}

func extensionFromURL(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	ext := strings.ToLower(filepath.Ext(path))
	if knownExts[ext] {
		return ext
	}
	return ""
}

func filenameFromURL(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	name = safeNameRe.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	if name == "" || name == "." || name == ".." || name == "_" {
		return "download"
	}
	return name
}
