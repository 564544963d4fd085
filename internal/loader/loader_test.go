package loader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casatour/internal/download"
	"casatour/internal/scene"
)

// districtGLB encodes a small district: a block "Manzana" owning "casa4" (flat red
// material) and a tagged façade whose texture points at a missing file.
func districtGLB(t *testing.T) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 1, 3, 2})

	doc.Images = []*gltf.Image{{URI: "missing.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{
		{Name: "adobe", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0, 0, 1}}},
		{Name: "fachada", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
	}
	doc.Meshes = []*gltf.Mesh{
		{Name: "wall", Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
		}}},
		{Name: "front", Primitives: []*gltf.Primitive{
			{Attributes: map[string]int{gltf.POSITION: pos}, Indices: gltf.Index(idx), Material: gltf.Index(1)},
			{Attributes: map[string]int{gltf.POSITION: pos}, Indices: gltf.Index(idx)},
		}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "Manzana", Children: []int{1, 2}},
		{Name: "casa4", Mesh: gltf.Index(0), Translation: [3]float64{10, 0, -2}},
		{Name: "Fachada", Mesh: gltf.Index(1), Extras: map[string]any{"houseId": "casa9"}},
	}
	doc.Scenes = []*gltf.Scene{{Name: "Puebla", Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func find(root *scene.Node, name string) *scene.Node {
	var out *scene.Node
	root.Traverse(func(n *scene.Node) {
		if n.Name == name && out == nil {
			out = n
		}
	})
	return out
}

func TestLoadBuildsSceneGraph(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "mapa.glb", districtGLB(t))

	var last float64
	root, err := New(download.New(dir)).Load(context.Background(), "/mapa.glb", func(f float64) { last = f })
	require.NoError(t, err)
	assert.Equal(t, 1.0, last)

	block := find(root, "Manzana")
	require.NotNil(t, block)
	assert.Same(t, root, block.Parent())
	require.Len(t, block.Children(), 2)

	casa := find(root, "casa4")
	require.NotNil(t, casa)
	assert.Same(t, block, casa.Parent())
	require.True(t, casa.Drawable())
	assert.Equal(t, 2, casa.Mesh.TriangleCount())
	assert.Equal(t, mgl32.Vec3{10, 0, -2}, mgl32.TransformCoordinate(mgl32.Vec3{}, casa.World()))
	require.Len(t, casa.Materials, 1)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, casa.Materials[0].Color)
	assert.Nil(t, casa.Materials[0].Texture)

	front := find(root, "Fachada")
	require.NotNil(t, front)
	assert.Equal(t, "casa9", front.Metadata["houseId"])
	assert.Equal(t, 4, front.Mesh.TriangleCount(), "primitives merged into one mesh")
	require.Len(t, front.Mesh.Groups, 2)
	assert.Equal(t, scene.Group{Start: 6, Count: 6, Material: 1}, front.Mesh.Groups[1])
	require.Len(t, front.Materials, 2)
	require.NotNil(t, front.Materials[0].Texture)
	assert.True(t, front.Materials[0].Texture.Broken)
	assert.Nil(t, front.Materials[1])
	assert.NoError(t, front.Mesh.Validate())
}

func TestLoadCompressed(t *testing.T) {
	raw := districtGLB(t)
	dir := t.TempDir()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	writeAsset(t, dir, "mapa.glb.gz", gz.Bytes())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	writeAsset(t, dir, "mapa.glb.zst", enc.EncodeAll(raw, nil))
	require.NoError(t, enc.Close())

	l := New(download.New(dir))
	for _, name := range []string{"/mapa.glb.gz", "/mapa.glb.zst"} {
		root, err := l.Load(context.Background(), name, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, find(root, "casa4"), name)
	}
}

func TestLoadFailuresAreLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "model.obj", []byte("v 0 0 0"))
	writeAsset(t, dir, "broken.glb", []byte("glTF\x02\x00\x00\x00garbage"))
	l := New(download.New(dir))

	tests := []struct {
		src  string
		want error
	}{
		{"/missing.glb", os.ErrNotExist},
		{"/model.obj", ErrUnsupported},
		{"/broken.glb", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root, err := l.Load(context.Background(), tt.src, nil)
			assert.Nil(t, root)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.src, le.Path)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDecompressPassthrough(t *testing.T) {
	data, name, err := Decompress("a.glb", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "a.glb", name)
	assert.Equal(t, []byte("x"), data)

	_, _, err = Decompress("a.glb.gz", []byte("not gzip"))
	assert.Error(t, err)
}

func TestFitKeepsAspect(t *testing.T) {
	img := Fit(image.NewRGBA(image.Rect(0, 0, 4000, 1000)), 2048)
	assert.Equal(t, image.Pt(2048, 512), img.Bounds().Size())

	small := image.NewRGBA(image.Rect(0, 0, 64, 64))
	assert.Same(t, small, Fit(small, 2048))
}

func TestAsyncDeliversResult(t *testing.T) {
	release := make(chan struct{})
	req := Async(context.Background(), func(ctx context.Context, progress download.Progress) (string, error) {
		progress(0.25)
		<-release
		progress(0.75)
		return "ok", nil
	})

	require.Eventually(t, func() bool {
		p, _ := req.Poll()
		return p == 0.25
	}, time.Second, time.Millisecond)
	_, done := req.Poll()
	assert.False(t, done)

	close(release)
	require.Eventually(t, func() bool {
		_, done := req.Poll()
		return done
	}, time.Second, time.Millisecond)
	p, _ := req.Poll()
	assert.Equal(t, 1.0, p)
	v, err := req.Result()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestAsyncRecoversPanic(t *testing.T) {
	req := Async(context.Background(), func(context.Context, download.Progress) (int, error) {
		panic("bad asset")
	})
	_, err := req.Wait(context.Background())
	assert.ErrorContains(t, err, "bad asset")
}
