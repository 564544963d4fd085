package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

// DecodeTexture decodes PNG, JPEG or WebP data and downsizes it so that neither edge
// exceeds maxSize (0 means no limit), keeping the aspect ratio.
func DecodeTexture(data []byte, maxSize int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return Fit(img, maxSize), nil
}

// Fit returns img unchanged when it fits in maxSize x maxSize, else a linearly resampled copy.
func Fit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) || w == 0 || h == 0 {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	return transform.Resize(img, w, h, transform.Linear)
}
