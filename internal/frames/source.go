package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Frame is one decoded image in a temporal sequence.
type Frame = image.Image

// Source decodes a single frame file. Implementations must be safe for
// concurrent, independent calls.
type Source interface {
	Decode(path string) (Frame, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(path string) (Frame, error)

func (f SourceFunc) Decode(path string) (Frame, error) { return f(path) }

// ImageSource decodes JPEG and PNG files into *image.RGBA.
type ImageSource struct{}

func (ImageSource) Decode(path string) (Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
