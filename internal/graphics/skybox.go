package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"casatour/internal/scene"
)

const skyboxScale = 1000

// equirectAspectMin/Max: width/height ratio for equirectangular panorama (typically 2:1).
const equirectAspectMin = 1.8
const equirectAspectMax = 2.2

// Sky draws a background image around the camera: an equirectangular panorama through
// a small shader, or a cubemap for other layouts.
// GPU loading is deferred to the first Draw so it runs after the window/OpenGL context exists.
type Sky struct {
	source *scene.Texture

	tex      rl.Texture2D
	mesh     rl.Mesh
	mtl      rl.Material
	loaded   bool
	failed   bool
	equirect bool
	camPos   int32
	texLoc   int32
}

// Set selects the texture to show. Setting a different texture releases the previous one.
func (s *Sky) Set(t *scene.Texture) {
	if t == s.source {
		return
	}
	s.Unload()
	s.source = t
}

// ensureLoaded uploads the pending texture and builds the skybox cube.
func (s *Sky) ensureLoaded() bool {
	if s.loaded {
		return true
	}
	if s.failed || !s.source.Ready() {
		return false
	}
	s.failed = true
	b := s.source.Image.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return false
	}
	aspect := float32(b.Dx()) / float32(b.Dy())
	s.equirect = aspect >= equirectAspectMin && aspect <= equirectAspectMax

	img := rl.NewImageFromImage(s.source.Image)
	defer rl.UnloadImage(img)

	if !s.equirect {
		s.tex = rl.LoadTextureCubemap(img, rl.CubemapLayoutAutoDetect)
		if !rl.IsTextureValid(s.tex) {
			return false
		}
		s.mesh = rl.GenMeshCube(1, 1, 1)
		s.mtl = rl.LoadMaterialDefault()
		rl.SetMaterialTexture(&s.mtl, rl.MapCubemap, s.tex)
		s.loaded, s.failed = true, false
		return true
	}

	s.tex = rl.LoadTextureFromImage(img)
	if !rl.IsTextureValid(s.tex) {
		return false
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		rl.UnloadTexture(s.tex)
		return false
	}
	rl.SetTextureFilter(s.tex, rl.FilterBilinear)
	s.mesh = rl.GenMeshCube(1, 1, 1)
	s.mtl = rl.LoadMaterialDefault()
	s.mtl.Shader = shader
	s.camPos = rl.GetShaderLocation(shader, "cameraPosition")
	s.texLoc = rl.GetShaderLocation(shader, "skybox")
	s.loaded, s.failed = true, false
	return true
}

// Equirectangular skybox shader: samples a 2D panorama by view direction.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  float u = lon / 6.28318530718 + 0.5;
  float v = 0.5 - lat / 3.14159265359;
  finalColor = texture(skybox, vec2(u, v));
}
`
)

// Draw renders the sky as a large cube centred on eye. Must be called first inside 3D
// mode; it reports false when no sky is available so the caller keeps its clear colour.
func (s *Sky) Draw(eye mgl32.Vec3) bool {
	if !s.ensureLoaded() {
		return false
	}
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	scale := rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale)
	trans := rl.MatrixTranslate(eye[0], eye[1], eye[2])
	transform := rl.MatrixMultiply(scale, trans)
	if s.equirect {
		if s.camPos >= 0 {
			camPos := []float32{eye[0], eye[1], eye[2]}
			rl.SetShaderValueV(s.mtl.Shader, s.camPos, camPos, rl.ShaderUniformVec3, 1)
		}
		if s.texLoc >= 0 {
			rl.SetShaderValueTexture(s.mtl.Shader, s.texLoc, s.tex)
		}
	}
	rl.DrawMesh(s.mesh, s.mtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
	return true
}

// Unload releases the GPU resources.
func (s *Sky) Unload() {
	if s.loaded {
		rl.UnloadTexture(s.tex)
		rl.UnloadMesh(&s.mesh)
		if s.equirect {
			rl.UnloadShader(s.mtl.Shader)
		}
	}
	s.loaded, s.failed = false, false
	s.source = nil
}
