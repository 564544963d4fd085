package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"casatour/internal/download"
	"casatour/internal/scene"
)

func (l *Loader) decodeGLTF(ctx context.Context, name string, data []byte) (*scene.Node, error) {
	var fsys fs.FS
	if l.Fetcher != nil && !download.IsRemote(name) {
		fsys = os.DirFS(filepath.Dir(l.Fetcher.Resolve(name)))
	}
	doc := new(gltf.Document)
	var dec *gltf.Decoder
	if fsys != nil {
		dec = gltf.NewDecoderFS(bytes.NewReader(data), fsys)
	} else {
		dec = gltf.NewDecoder(bytes.NewReader(data))
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	b := &builder{
		doc:    doc,
		ctx:    ctx,
		loader: l,
		base:   path.Dir(name),
		meshes: make(map[int]*builtMesh),
	}
	return b.build()
}

// builder converts one decoded document. Materials, textures and meshes are built once and
// shared between the nodes that reference them.
type builder struct {
	doc    *gltf.Document
	ctx    context.Context
	loader *Loader
	base   string

	textures  []*scene.Texture
	materials []*scene.Material
	meshes    map[int]*builtMesh
}

type builtMesh struct {
	mesh      *scene.Mesh
	materials []*scene.Material
}

// Build converts an already decoded document, resolving external image URIs relative to base.
func (l *Loader) Build(ctx context.Context, doc *gltf.Document, base string) (*scene.Node, error) {
	b := &builder{doc: doc, ctx: ctx, loader: l, base: base, meshes: make(map[int]*builtMesh)}
	return b.build()
}

func (b *builder) build() (*scene.Node, error) {
	b.buildTextures()
	b.buildMaterials()

	roots, name := b.sceneRoots()
	root := scene.NewNode(name)

	type pending struct {
		index  int
		parent *scene.Node
	}
	visited := make(map[int]bool)
	stack := make([]pending, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, pending{roots[i], root})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.index < 0 || p.index >= len(b.doc.Nodes) || visited[p.index] {
			continue
		}
		visited[p.index] = true

		src := b.doc.Nodes[p.index]
		n, err := b.node(src)
		if err != nil {
			return nil, fmt.Errorf("node %d %q: %w", p.index, src.Name, err)
		}
		p.parent.Add(n)
		for i := len(src.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{src.Children[i], n})
		}
	}
	return root, nil
}

// sceneRoots returns the root node indices of the default scene, or of all parentless
// nodes when the document declares no scene.
func (b *builder) sceneRoots() ([]int, string) {
	if len(b.doc.Scenes) > 0 {
		i := 0
		if b.doc.Scene != nil && *b.doc.Scene < len(b.doc.Scenes) {
			i = *b.doc.Scene
		}
		s := b.doc.Scenes[i]
		return s.Nodes, s.Name
	}
	child := make(map[int]bool)
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range b.doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots, ""
}

func (b *builder) node(src *gltf.Node) (*scene.Node, error) {
	n := scene.NewNode(src.Name)
	n.Transform = localTransform(src)
	if md, ok := src.Extras.(map[string]any); ok && len(md) > 0 {
		n.Metadata = md
	}
	if src.Mesh == nil {
		return n, nil
	}
	m, err := b.mesh(*src.Mesh)
	if err != nil {
		return nil, err
	}
	if m != nil {
		n.Mesh = m.mesh
		n.Materials = append([]*scene.Material(nil), m.materials...)
	}
	return n, nil
}

func localTransform(src *gltf.Node) mgl32.Mat4 {
	if src.Matrix != gltf.DefaultMatrix && src.Matrix != [16]float64{} {
		var m mgl32.Mat4
		for i, v := range src.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// mesh merges the triangle primitives of one glTF mesh into a single scene mesh with one
// group per primitive. Non-triangle primitives are skipped. It returns nil when nothing
// drawable remains.
func (b *builder) mesh(index int) (*builtMesh, error) {
	if bm, ok := b.meshes[index]; ok {
		return bm, nil
	}
	if index < 0 || index >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", index)
	}
	src := b.doc.Meshes[index]
	out := &scene.Mesh{Indices: []uint32{}}
	var mats []*scene.Material
	withUVs := true

	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			b.loader.log.WithField("mesh", src.Name).Debugf("skipping primitive %d with mode %v", pi, prim.Mode)
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d positions: %w", src.Name, pi, err)
		}
		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(b.doc, b.doc.Accessors[uvIdx], nil); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d uvs: %w", src.Name, pi, err)
			}
		}
		if len(uvs) != len(positions) {
			withUVs = false
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d indices: %w", src.Name, pi, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		indices = indices[:len(indices)/3*3]

		offset := uint32(len(out.Positions))
		start := len(out.Indices)
		for _, p := range positions {
			out.Positions = append(out.Positions, mgl32.Vec3{p[0], p[1], p[2]})
		}
		for i := range positions {
			var uv mgl32.Vec2
			if i < len(uvs) {
				uv = mgl32.Vec2{uvs[i][0], uvs[i][1]}
			}
			out.UVs = append(out.UVs, uv)
		}
		for _, idx := range indices {
			out.Indices = append(out.Indices, idx+offset)
		}
		out.Groups = append(out.Groups, scene.Group{Start: start, Count: len(indices), Material: len(mats)})
		mats = append(mats, b.material(prim.Material))
	}
	if !withUVs {
		out.UVs = nil
	}

	var bm *builtMesh
	if out.TriangleCount() > 0 {
		bm = &builtMesh{mesh: out, materials: mats}
	}
	b.meshes[index] = bm
	return bm, nil
}

func (b *builder) material(index *int) *scene.Material {
	if index == nil || *index < 0 || *index >= len(b.materials) {
		return nil
	}
	return b.materials[*index]
}

func (b *builder) buildMaterials() {
	b.materials = make([]*scene.Material, len(b.doc.Materials))
	for i, src := range b.doc.Materials {
		m := &scene.Material{
			Name:        src.Name,
			Color:       color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
			HasColor:    true,
			Opacity:     1,
			Transparent: src.AlphaMode == gltf.AlphaBlend,
		}
		if _, ok := src.Extensions["KHR_materials_unlit"]; ok {
			m.Unlit = true
		}
		if pbr := src.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				m.Color = color.RGBA{R: unit8(f[0]), G: unit8(f[1]), B: unit8(f[2]), A: 0xff}
				m.Opacity = float32(f[3])
			}
			if ti := pbr.BaseColorTexture; ti != nil && ti.Index >= 0 && ti.Index < len(b.textures) {
				m.Texture = b.textures[ti.Index]
			}
		}
		b.materials[i] = m
	}
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*255 + 0.5)
}

// buildTextures decodes every texture image. A texture whose image cannot be read or
// decoded is kept but marked broken so materials can fall back to a flat colour.
func (b *builder) buildTextures() {
	images := make(map[int]*scene.Texture)
	b.textures = make([]*scene.Texture, len(b.doc.Textures))
	for i, src := range b.doc.Textures {
		if src.Source == nil || *src.Source < 0 || *src.Source >= len(b.doc.Images) {
			b.textures[i] = &scene.Texture{Name: src.Name, Broken: true}
			continue
		}
		if tex, ok := images[*src.Source]; ok {
			b.textures[i] = tex
			continue
		}
		img := b.doc.Images[*src.Source]
		tex := &scene.Texture{Name: img.Name}
		if tex.Name == "" {
			tex.Name = img.URI
		}
		data, err := b.imageBytes(img)
		if err == nil {
			tex.Image, err = DecodeTexture(data, b.loader.MaxTextureSize)
		}
		if err != nil {
			tex.Broken = true
			b.loader.log.WithError(err).WithField("texture", tex.Name).Warn("texture unusable")
		}
		images[*src.Source] = tex
		b.textures[i] = tex
	}
}

func (b *builder) imageBytes(img *gltf.Image) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(b.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		return modeler.ReadBufferView(b.doc, b.doc.BufferViews[*img.BufferView])
	case strings.HasPrefix(img.URI, "data:"):
		comma := strings.IndexByte(img.URI, ',')
		if comma < 0 || !strings.Contains(img.URI[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data uri")
		}
		return base64.StdEncoding.DecodeString(img.URI[comma+1:])
	case img.URI != "":
		if b.loader.Fetcher == nil {
			return nil, fmt.Errorf("no fetcher for %q", img.URI)
		}
		return b.loader.Fetcher.Open(b.ctx, resolveURI(b.base, img.URI), nil)
	}
	return nil, fmt.Errorf("image has no source")
}

func resolveURI(base, uri string) string {
	if download.IsRemote(uri) {
		return uri
	}
	if download.IsRemote(base) {
		i := strings.LastIndexByte(base, '/')
		return base[:i+1] + uri
	}
	return path.Join(base, uri)
}
