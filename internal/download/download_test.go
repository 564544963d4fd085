package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLocalReportsCompletion(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "models", "map.glb"), []byte("glTF-bytes"), 0644))

	var seen []float64
	data, err := New(root).Open(context.Background(), "/models/map.glb", func(f float64) { seen = append(seen, f) })
	require.NoError(t, err)
	assert.Equal(t, "glTF-bytes", string(data))
	require.NotEmpty(t, seen)
	assert.Equal(t, 1.0, seen[len(seen)-1])
}

func TestOpenFromBundle(t *testing.T) {
	zp := filepath.Join(t.TempDir(), "tour.zip")
	zf, err := os.Create(zp)
	require.NoError(t, err)
	w := zip.NewWriter(zf)
	e, err := w.Create("splats/casa4.ply")
	require.NoError(t, err)
	_, err = e.Write([]byte("ply\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, zf.Close())

	f := New(zp)
	defer f.Close()
	data, err := f.Open(context.Background(), "/splats/casa4.ply", nil)
	require.NoError(t, err)
	assert.Equal(t, "ply\n", string(data))

	_, err = f.Open(context.Background(), "/splats/none.ply", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveStaysUnderRoot(t *testing.T) {
	f := New("public")
	assert.Equal(t, filepath.Join("public", "splats", "a.ply"), f.Resolve("/splats/a.ply"))
	assert.Equal(t, filepath.Join("public", "etc", "passwd"), f.Resolve("../../etc/passwd"))
}

func TestOpenHTTPProgress(t *testing.T) {
	body := make([]byte, 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var seen []float64
	data, err := New("").Open(context.Background(), srv.URL+"/models/map.glb", func(f float64) { seen = append(seen, f) })
	require.NoError(t, err)
	assert.Len(t, data, len(body))
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 1.0, seen[len(seen)-1])
}

func TestOpenHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New("").Open(context.Background(), srv.URL+"/missing.glb", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := New(t.TempDir()).Open(context.Background(), "/nope.glb", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveNamesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("ply\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := New("").Save(context.Background(), srv.URL+"/splats/gs-Anahuac_0.ply?v=2", dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gs-Anahuac_0.ply"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ply\n", string(got))
}

func TestFilenameHelpers(t *testing.T) {
	assert.Equal(t, "casa.glb", filenameFromContentDisposition(`attachment; filename="casa.glb"`))
	assert.Equal(t, "mapa.glb", filenameFromContentDisposition(`attachment; filename*=UTF-8''mapa.glb`))
	assert.Equal(t, ".glb", extensionFromContentType("model/gltf-binary; charset=binary"))
	assert.Equal(t, ".zst", extensionFromURL("https://x/y/map.glb.zst#frag"))
	assert.Equal(t, "download", sanitizeFilename(".."))
}
