package dataset

import (
	"fmt"
	"sync"

	"github.com/melody-ding/go-clipset/internal/types"
)

// Batch loads indices with up to workers concurrent Get calls and stacks
// the clips into an N,C,T,H,W tensor. All clips must share one shape.
func (d *Dataset) Batch(indices []int, workers int) (types.Tensor, []Target, error) {
	if len(indices) == 0 {
		return types.Tensor{}, nil, fmt.Errorf("batch: no indices")
	}
	if workers < 1 {
		workers = 1
	}

	clips := make([]types.Clip, len(indices))
	targets := make([]Target, len(indices))
	errs := make([]error, len(indices))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for k, idx := range indices {
		wg.Add(1)
		sem <- struct{}{}
		go func(k, idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			clips[k], targets[k], errs[k] = d.Get(idx)
		}(k, idx)
	}
	wg.Wait()

	for k, err := range errs {
		if err != nil {
			return types.Tensor{}, nil, fmt.Errorf("batch item %d: %w", indices[k], err)
		}
	}

	shape := clips[0].Shape
	size := len(clips[0].Data)
	out := types.Tensor{
		Shape: append([]int{len(clips)}, shape...),
		Data:  make([]float32, 0, size*len(clips)),
	}
	for k, c := range clips {
		if !sameShape(c.Shape, shape) {
			return types.Tensor{}, nil, fmt.Errorf("%w: item %d has shape %v, item %d %v", ErrShapeMismatch, indices[k], c.Shape, indices[0], shape)
		}
		out.Data = append(out.Data, c.Data...)
	}
	return out, targets, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
