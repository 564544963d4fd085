package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"casatour/internal/splat"
)

const (
	// minSplatSize keeps points without scale data visible.
	minSplatSize = 0.004
	maxSplatSize = 0.08
	// Meshes are split so each stays well inside 32-bit vertex counts and one upload.
	pointsPerChunk = 100_000
)

// PointCloud draws a splat capture as small coloured crosses: two perpendicular triangles
// per point, uploaded once and drawn with vertex colours.
type PointCloud struct {
	source *splat.Cloud
	chunks []rl.Mesh
	mtl    rl.Material
	ready  bool
}

// Set selects the cloud to show, releasing the previous one.
func (p *PointCloud) Set(c *splat.Cloud) {
	if c == p.source {
		return
	}
	p.Unload()
	p.source = c
}

func (p *PointCloud) ensureUploaded() bool {
	if p.ready {
		return true
	}
	if p.source == nil || len(p.source.Points) == 0 {
		return false
	}
	p.mtl = rl.LoadMaterialDefault()
	pts := p.source.Points
	for start := 0; start < len(pts); start += pointsPerChunk {
		end := min(start+pointsPerChunk, len(pts))
		p.chunks = append(p.chunks, uploadPoints(pts[start:end]))
	}
	p.ready = true
	return true
}

func uploadPoints(pts []splat.Point) rl.Mesh {
	const perPoint = 6
	vertices := make([]float32, 0, len(pts)*perPoint*3)
	colors := make([]uint8, 0, len(pts)*perPoint*4)
	for _, pt := range pts {
		s := max(minSplatSize, min(maxSplatSize, pt.Size))
		x, y, z := pt.Position[0], pt.Position[1], pt.Position[2]
		vertices = append(vertices,
			x-s, y-s, z, x+s, y-s, z, x, y+s, z,
			x, y-s, z-s, x, y-s, z+s, x, y+s, z,
		)
		c := pt.Color
		for i := 0; i < perPoint; i++ {
			colors = append(colors, c.R, c.G, c.B, c.A)
		}
	}
	mesh := rl.Mesh{
		VertexCount:   int32(len(pts) * perPoint),
		TriangleCount: int32(len(pts) * 2),
		Vertices:      &vertices[0],
		Colors:        &colors[0],
	}
	rl.UploadMesh(&mesh, false)
	mesh.Vertices, mesh.Colors = nil, nil
	return mesh
}

// Draw renders the cloud. Must be called between BeginMode3D and EndMode3D.
func (p *PointCloud) Draw() {
	if !p.ensureUploaded() {
		return
	}
	rl.DisableBackfaceCulling()
	identity := rl.MatrixIdentity()
	for _, m := range p.chunks {
		rl.DrawMesh(m, p.mtl, identity)
	}
	rl.EnableBackfaceCulling()
}

// Unload frees the GPU meshes.
func (p *PointCloud) Unload() {
	for i := range p.chunks {
		rl.UnloadMesh(&p.chunks[i])
	}
	p.chunks = nil
	p.ready = false
	p.source = nil
}
