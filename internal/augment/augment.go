// Package augment applies spatial transforms to the frames of a clip.
//
// Randomness is drawn once per clip into a Params value and then applied
// to every frame, so all frames of a clip share the same crop and flip.
// Transforms hold no mutable state and can be shared between goroutines.
package augment

import (
	"image"
	"math/rand/v2"

	"golang.org/x/image/draw"
)

// Params is one random draw shared by all frames of a clip.
type Params struct {
	Flip bool
	// CropX and CropY place a random crop, as a fraction in [0,1) of the
	// slack between image and crop size.
	CropX, CropY float64
}

// Transform is a spatial transform on a single frame.
type Transform interface {
	// Draw fills the fields of p this transform is randomized by.
	Draw(rng *rand.Rand, p *Params)
	Apply(img image.Image, p Params) image.Image
}

// Randomize draws a fresh Params for t.
func Randomize(t Transform, rng *rand.Rand) Params {
	var p Params
	t.Draw(rng, &p)
	return p
}

// ApplyAll runs t with the same draw over every frame.
func ApplyAll(t Transform, frames []image.Image, p Params) []image.Image {
	out := make([]image.Image, len(frames))
	for i, f := range frames {
		out[i] = t.Apply(f, p)
	}
	return out
}

// Compose applies transforms in order.
type Compose []Transform

func (c Compose) Draw(rng *rand.Rand, p *Params) {
	for _, t := range c {
		t.Draw(rng, p)
	}
}

func (c Compose) Apply(img image.Image, p Params) image.Image {
	for _, t := range c {
		img = t.Apply(img, p)
	}
	return img
}

// Resize scales to Width x Height with bilinear interpolation.
type Resize struct {
	Width, Height int
}

func (Resize) Draw(*rand.Rand, *Params) {}

func (r Resize) Apply(img image.Image, _ Params) image.Image {
	b := img.Bounds()
	if b.Dx() == r.Width && b.Dy() == r.Height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// CenterCrop cuts a Size x Size square from the middle.
type CenterCrop struct {
	Size int
}

func (CenterCrop) Draw(*rand.Rand, *Params) {}

func (c CenterCrop) Apply(img image.Image, _ Params) image.Image {
	return crop(img, c.Size, 0.5, 0.5)
}

// RandomCrop cuts a Size x Size square at a drawn position.
type RandomCrop struct {
	Size int
}

func (RandomCrop) Draw(rng *rand.Rand, p *Params) {
	p.CropX = rng.Float64()
	p.CropY = rng.Float64()
}

func (c RandomCrop) Apply(img image.Image, p Params) image.Image {
	return crop(img, c.Size, p.CropX, p.CropY)
}

// HorizontalFlip mirrors frames with probability P.
type HorizontalFlip struct {
	P float64
}

func (h HorizontalFlip) Draw(rng *rand.Rand, p *Params) {
	p.Flip = rng.Float64() < h.P
}

func (HorizontalFlip) Apply(img image.Image, p Params) image.Image {
	if !p.Flip {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(b.Dx()-1-x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// crop cuts a size x size window whose offset is fx, fy of the slack. The
// window shrinks to the image when the image is smaller.
func crop(img image.Image, size int, fx, fy float64) image.Image {
	b := img.Bounds()
	w, h := min(size, b.Dx()), min(size, b.Dy())
	x0 := b.Min.X + int(fx*float64(b.Dx()-w))
	y0 := b.Min.Y + int(fy*float64(b.Dy()-h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return dst
}
