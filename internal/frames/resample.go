package frames

import "fmt"

// PadEdges extends frames to exactly reference entries, putting
// floor(missing/2) copies of the first frame in front and the rest as
// copies of the last frame at the back.
func PadEdges[T any](frames []T, reference int) ([]T, error) {
	if len(frames) == 0 {
		return nil, ErrEmptySequence
	}
	missing := reference - len(frames)
	if missing < 0 {
		return nil, fmt.Errorf("%w: %d < %d", ErrReferenceTooShort, reference, len(frames))
	}

	front := missing / 2
	back := missing - front

	out := make([]T, 0, reference)
	for i := 0; i < front; i++ {
		out = append(out, frames[0])
	}
	out = append(out, frames...)
	last := frames[len(frames)-1]
	for i := 0; i < back; i++ {
		out = append(out, last)
	}
	return out, nil
}

// Resample returns exactly target frames. The sequence is first padded to
// reference with PadEdges, then frame k is taken from position
// k*reference/target rounded to the nearest index, ties going to the
// lower index.
//
// reference must be at least len(frames) and target must not exceed
// reference.
func Resample[T any](frames []T, target, reference int) ([]T, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: target %d", ErrInvalidLength, target)
	}
	if target > reference {
		return nil, fmt.Errorf("%w: %d > %d", ErrTargetExceedsReference, target, reference)
	}

	expanded, err := PadEdges(frames, reference)
	if err != nil {
		return nil, err
	}

	out := make([]T, target)
	for k := range out {
		out[k] = expanded[nearestIndex(k, target, reference)]
	}
	return out, nil
}

// nearestIndex rounds k*reference/target half down, in integer arithmetic
// so integral steps are exact.
func nearestIndex(k, target, reference int) int {
	// ceil(k*ref/target - 1/2) == ceil((2*k*ref - target) / (2*target))
	idx := ceilDiv(2*k*reference-target, 2*target)
	if idx > reference-1 {
		idx = reference - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func ceilDiv(a, b int) int {
	if a >= 0 {
		return (a + b - 1) / b
	}
	return -((-a) / b)
}

// NormalizeBatch resamples every sequence to target frames, using the
// longest sequence in the batch as the reference length.
func NormalizeBatch[T any](batch [][]T, target int) ([][]T, error) {
	longest := 0
	for _, seq := range batch {
		longest = max(longest, len(seq))
	}

	out := make([][]T, len(batch))
	for i, seq := range batch {
		r, err := Resample(seq, target, longest)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}
