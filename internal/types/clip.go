package types

import "fmt"

// Tensor is a dense row-major float32 array.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(shape ...int) Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return Tensor{Shape: append([]int(nil), shape...), Data: make([]float32, n)}
}

// Len returns the number of elements implied by the shape.
func (t Tensor) Len() int {
	n := 1
	for _, s := range t.Shape {
		n *= s
	}
	return n
}

// Validate checks that Data holds exactly as many elements as Shape describes.
func (t Tensor) Validate() error {
	if len(t.Shape) == 0 {
		return fmt.Errorf("tensor has no shape")
	}
	if t.Len() != len(t.Data) {
		return fmt.Errorf("tensor shape %v needs %d elements, has %d", t.Shape, t.Len(), len(t.Data))
	}
	return nil
}

// Clip is one dataset item: a channel, time, height, width tensor plus the
// sample it was loaded from.
type Clip struct {
	VideoID      string
	FrameIndices []int
	// SourceFrames is the number of frames decoded from disk; Padded and
	// Trimmed record whether selection added or dropped frames.
	SourceFrames int
	Padded       bool
	Trimmed      bool
	Tensor
}

// Channels, Frames, Height and Width index into the C,T,H,W shape.
func (c Clip) Channels() int { return c.Shape[0] }
func (c Clip) Frames() int   { return c.Shape[1] }
func (c Clip) Height() int   { return c.Shape[2] }
func (c Clip) Width() int    { return c.Shape[3] }
