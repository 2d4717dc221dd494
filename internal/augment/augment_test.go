package augment

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient returns a w x h image whose red channel is the x coordinate and
// green channel the y coordinate.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func red(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return uint8(r >> 8)
}

func green(img image.Image, x, y int) uint8 {
	_, g, _, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return uint8(g >> 8)
}

func TestCenterCrop(t *testing.T) {
	out := CenterCrop{Size: 4}.Apply(gradient(10, 8), Params{})
	assert.Equal(t, 4, out.Bounds().Dx())
	assert.Equal(t, 4, out.Bounds().Dy())
	assert.Equal(t, uint8(3), red(out, 0, 0))
	assert.Equal(t, uint8(2), green(out, 0, 0))
}

func TestCropLargerThanImage(t *testing.T) {
	out := CenterCrop{Size: 20}.Apply(gradient(6, 4), Params{})
	assert.Equal(t, image.Rect(0, 0, 6, 4), out.Bounds())
}

func TestRandomCropUsesDraw(t *testing.T) {
	img := gradient(10, 10)
	rc := RandomCrop{Size: 5}

	assert.Equal(t, uint8(0), red(rc.Apply(img, Params{CropX: 0, CropY: 0}), 0, 0))
	assert.Equal(t, uint8(4), red(rc.Apply(img, Params{CropX: 0.99, CropY: 0}), 0, 0))
}

func TestHorizontalFlip(t *testing.T) {
	img := gradient(5, 2)
	flipped := HorizontalFlip{P: 1}.Apply(img, Params{Flip: true})
	assert.Equal(t, uint8(4), red(flipped, 0, 0))
	assert.Equal(t, uint8(0), red(flipped, 4, 1))

	same := HorizontalFlip{P: 1}.Apply(img, Params{Flip: false})
	assert.Same(t, img, same)
}

func TestResize(t *testing.T) {
	out := Resize{Width: 3, Height: 2}.Apply(gradient(12, 8), Params{})
	assert.Equal(t, image.Rect(0, 0, 3, 2), out.Bounds())

	img := gradient(3, 2)
	assert.Same(t, img, Resize{Width: 3, Height: 2}.Apply(img, Params{}))
}

func TestOneDrawPerClip(t *testing.T) {
	tr := Compose{RandomCrop{Size: 4}, HorizontalFlip{P: 0.5}}
	rng := rand.New(rand.NewPCG(1, 2))

	frames := []image.Image{gradient(9, 9), gradient(9, 9), gradient(9, 9)}
	for i := 0; i < 20; i++ {
		p := Randomize(tr, rng)
		out := ApplyAll(tr, frames, p)
		require.Len(t, out, 3)
		for _, f := range out[1:] {
			assert.Equal(t, out[0], f)
		}
	}
}

func TestRandomizeIsDeterministicForSeed(t *testing.T) {
	tr := Compose{RandomCrop{Size: 4}, HorizontalFlip{P: 0.5}}
	a := Randomize(tr, rand.New(rand.NewPCG(7, 7)))
	b := Randomize(tr, rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestToTensor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 255})

	tn := ToTensor(img)
	require.NoError(t, tn.Validate())
	assert.Equal(t, []int{3, 1, 2}, tn.Shape)
	assert.InDeltaSlice(t, []float32{1, 0, 0, 1, 0.2, 0}, tn.Data, 1e-6)
}

func TestNormalize(t *testing.T) {
	tn := ToTensor(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	out, err := Normalize{Mean: [3]float32{0.5, 0.5, 0.5}, Std: [3]float32{0.5, 0.5, 0.5}}.Apply(tn)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{-1, -1, -1}, out.Data, 1e-6)

	_, err = Normalize{}.Apply(tn)
	assert.Error(t, err)
}
