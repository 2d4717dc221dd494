package augment

import (
	"fmt"
	"image"

	"github.com/melody-ding/go-clipset/internal/types"
)

// ToTensor converts img into a 3,H,W float32 tensor of RGB values in [0,1].
func ToTensor(img image.Image) types.Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := types.NewTensor(3, h, w)
	plane := w * h

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := y*w + x
			t.Data[i] = float32(r>>8) / 255
			t.Data[plane+i] = float32(g>>8) / 255
			t.Data[2*plane+i] = float32(bl>>8) / 255
		}
	}
	return t
}

// Normalize subtracts Mean and divides by Std per channel.
type Normalize struct {
	Mean [3]float32
	Std  [3]float32
}

// ImageNet statistics.
var ImageNet = Normalize{
	Mean: [3]float32{0.485, 0.456, 0.406},
	Std:  [3]float32{0.229, 0.224, 0.225},
}

func (n Normalize) Apply(t types.Tensor) (types.Tensor, error) {
	if len(t.Shape) != 3 || t.Shape[0] != 3 {
		return t, fmt.Errorf("normalize wants a 3,H,W tensor, got %v", t.Shape)
	}
	plane := t.Shape[1] * t.Shape[2]
	out := types.NewTensor(t.Shape...)
	for c := 0; c < 3; c++ {
		if n.Std[c] == 0 {
			return t, fmt.Errorf("normalize: zero std on channel %d", c)
		}
		for i := 0; i < plane; i++ {
			out.Data[c*plane+i] = (t.Data[c*plane+i] - n.Mean[c]) / n.Std[c]
		}
	}
	return out, nil
}
