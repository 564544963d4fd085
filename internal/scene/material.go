package scene

import (
	"image"
	"image/color"
)

// Neutral fallback colours used when an asset gives no usable colour.
var (
	FallbackGray = Hex(0xaaaaaa)
	RepairGray   = Hex(0xcccccc)
)

// Hex converts a 0xRRGGBB value to an opaque colour.
func Hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// Texture is a decoded base-colour image. Image is nil while the texture is still being
// fetched; Broken is set when fetching or decoding failed.
type Texture struct {
	Name   string
	Image  image.Image
	Broken bool
}

// Ready reports whether the texture can be handed to the renderer.
func (t *Texture) Ready() bool {
	return t != nil && !t.Broken && t.Image != nil
}

// Material is the per-group surface description of a mesh. Colour is the base colour
// (multiplied with the texture when one is present).
type Material struct {
	Name        string
	Color       color.RGBA
	HasColor    bool
	Texture     *Texture
	Opacity     float32
	Transparent bool
	Unlit       bool
}

// NewFlatMaterial returns an opaque, unlit material with the given colour.
func NewFlatMaterial(c color.RGBA) *Material {
	return &Material{Color: c, HasColor: true, Opacity: 1, Unlit: true}
}
