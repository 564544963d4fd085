package graphics

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"casatour/internal/scene"
)

var errNilMaterial = errors.New("graphics: mesh group has no material")

// uploaded is one material group of a scene mesh, expanded to unindexed triangles and on the GPU.
type uploaded struct {
	mesh     rl.Mesh
	material int
}

// MeshCache uploads scene meshes and textures on first use so that GPU resources are
// allocated after the window/OpenGL context exists, and draws them with flat materials.
type MeshCache struct {
	meshes   map[*scene.Mesh][]uploaded
	bad      map[*scene.Mesh]bool
	textures map[*scene.Texture]rl.Texture2D
	mtl      rl.Material
	white    rl.Texture2D
	mtlReady bool
}

// NewMeshCache returns an empty cache.
func NewMeshCache() *MeshCache {
	return &MeshCache{
		meshes:   make(map[*scene.Mesh][]uploaded),
		bad:      make(map[*scene.Mesh]bool),
		textures: make(map[*scene.Texture]rl.Texture2D),
	}
}

// ensureMaterial creates the shared material. Unlit drawing is raylib's default shader:
// vertex colour * colDiffuse * albedo texture.
func (c *MeshCache) ensureMaterial() {
	if c.mtlReady {
		return
	}
	c.mtl = rl.LoadMaterialDefault()
	img := rl.GenImageColor(1, 1, rl.White)
	c.white = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	c.mtlReady = true
}

// upload expands each group of m into its own GPU mesh. Meshes that fail validation are
// remembered and skipped; the post-load pass has already logged them.
func (c *MeshCache) upload(m *scene.Mesh) ([]uploaded, bool) {
	if ups, ok := c.meshes[m]; ok {
		return ups, true
	}
	if c.bad[m] {
		return nil, false
	}
	if err := m.Validate(); err != nil {
		c.bad[m] = true
		return nil, false
	}
	var ups []uploaded
	for _, g := range m.MaterialGroups() {
		count := g.Count - g.Count%3
		if count == 0 {
			continue
		}
		vertices := make([]float32, 0, count*3)
		texcoords := make([]float32, 0, count*2)
		for i := g.Start; i < g.Start+count; i++ {
			v := m.Corner(i)
			p := m.Positions[v]
			vertices = append(vertices, p[0], p[1], p[2])
			if m.UVs != nil {
				uv := m.UVs[v]
				texcoords = append(texcoords, uv[0], uv[1])
			} else {
				texcoords = append(texcoords, 0, 0)
			}
		}
		mesh := rl.Mesh{
			VertexCount:   int32(count),
			TriangleCount: int32(count / 3),
			Vertices:      &vertices[0],
			Texcoords:     &texcoords[0],
		}
		rl.UploadMesh(&mesh, false)
		// The vertex data lives in Go memory; raylib must not free it on unload.
		mesh.Vertices, mesh.Texcoords = nil, nil
		ups = append(ups, uploaded{mesh: mesh, material: g.Material})
	}
	c.meshes[m] = ups
	return ups, true
}

// texture returns the GPU copy of t, uploading it on first use.
func (c *MeshCache) texture(t *scene.Texture) (rl.Texture2D, bool) {
	if !t.Ready() {
		return rl.Texture2D{}, false
	}
	if tex, ok := c.textures[t]; ok {
		return tex, true
	}
	img := rl.NewImageFromImage(t.Image)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if !rl.IsTextureValid(tex) {
		return rl.Texture2D{}, false
	}
	rl.GenTextureMipmaps(&tex)
	rl.SetTextureFilter(tex, rl.FilterTrilinear)
	c.textures[t] = tex
	return tex, true
}

// DrawTree draws every drawable node under root. Must be called between BeginMode3D and
// EndMode3D. A group whose material slot is empty is reported so the frame can be repaired.
func (c *MeshCache) DrawTree(root *scene.Node) error {
	if root == nil {
		return nil
	}
	c.ensureMaterial()
	var errs []error
	root.Traverse(func(n *scene.Node) {
		if !n.Drawable() {
			return
		}
		ups, ok := c.upload(n.Mesh)
		if !ok {
			return
		}
		transform := toMatrix(n.World())
		for _, u := range ups {
			if u.material >= len(n.Materials) || n.Materials[u.material] == nil {
				errs = append(errs, fmt.Errorf("%s: %w", n.Path(), errNilMaterial))
				continue
			}
			c.drawGroup(u, n.Materials[u.material], transform)
		}
	})
	return errors.Join(errs...)
}

func (c *MeshCache) drawGroup(u uploaded, m *scene.Material, transform rl.Matrix) {
	tint := m.Color
	if !m.HasColor {
		tint = rl.White
	}
	if m.Opacity < 1 || m.Transparent {
		tint.A = uint8(max(0, min(1, m.Opacity)) * 255)
	}
	c.mtl.GetMap(rl.MapAlbedo).Color = tint
	if tex, ok := c.texture(m.Texture); ok {
		rl.SetMaterialTexture(&c.mtl, rl.MapAlbedo, tex)
	} else {
		rl.SetMaterialTexture(&c.mtl, rl.MapAlbedo, c.white)
	}
	rl.DrawMesh(u.mesh, c.mtl, transform)
}

// Unload frees every GPU resource. The cache can be reused afterwards.
func (c *MeshCache) Unload() {
	for m, ups := range c.meshes {
		for i := range ups {
			rl.UnloadMesh(&ups[i].mesh)
		}
		delete(c.meshes, m)
	}
	for t, tex := range c.textures {
		rl.UnloadTexture(tex)
		delete(c.textures, t)
	}
	clear(c.bad)
	if c.mtlReady {
		rl.UnloadTexture(c.white)
		c.mtlReady = false
	}
}
