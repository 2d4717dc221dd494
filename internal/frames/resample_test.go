package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPadEdges(t *testing.T) {
	tests := []struct {
		name      string
		frames    []int
		reference int
		want      []int
	}{
		{name: "no padding", frames: []int{1, 2, 3}, reference: 3, want: []int{1, 2, 3}},
		{name: "one missing goes to the back", frames: []int{1, 2, 3}, reference: 4, want: []int{1, 2, 3, 3}},
		{name: "even split", frames: []int{1, 2}, reference: 6, want: []int{1, 1, 1, 2, 2, 2}},
		{name: "odd split", frames: []int{7, 8, 9}, reference: 8, want: []int{7, 7, 7, 8, 9, 9, 9, 9}},
		{name: "single frame", frames: []int{5}, reference: 4, want: []int{5, 5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PadEdges(tt.frames, tt.reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPadEdgesSymmetry(t *testing.T) {
	frames := []int{10, 11, 12, 13, 14}
	for ref := len(frames); ref < 40; ref++ {
		got, err := PadEdges(frames, ref)
		require.NoError(t, err)
		require.Len(t, got, ref)

		missing := ref - len(frames)
		front, back := missing/2, missing-missing/2
		for i := 0; i < front; i++ {
			assert.Equal(t, 10, got[i], "ref=%d front %d", ref, i)
		}
		assert.Equal(t, frames, got[front:front+len(frames)])
		for i := 0; i < back; i++ {
			assert.Equal(t, 14, got[ref-1-i], "ref=%d back %d", ref, i)
		}
	}
}

func TestPadEdgesErrors(t *testing.T) {
	_, err := PadEdges([]int{}, 4)
	assert.ErrorIs(t, err, ErrEmptySequence)

	_, err = PadEdges([]int{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrReferenceTooShort)
}

func TestResampleAlwaysReturnsTarget(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for ref := n; ref <= 30; ref++ {
			for target := 1; target <= ref; target++ {
				got, err := Resample(seq(n), target, ref)
				require.NoError(t, err)
				require.Len(t, got, target, "n=%d ref=%d target=%d", n, ref, target)
			}
		}
	}
}

func TestResampleIdentity(t *testing.T) {
	for n := 1; n <= 50; n++ {
		got, err := Resample(seq(n), n, n)
		require.NoError(t, err)
		assert.Equal(t, seq(n), got)
	}
}

func TestResampleIntegralStep(t *testing.T) {
	// reference 40, target 10: step 4, positions 0,4,...,36
	got, err := Resample(seq(40), 10, 40)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4, 8, 12, 16, 20, 24, 28, 32, 36}, got)

	got, err = Resample(seq(9), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6}, got)
}

func TestResampleTiesGoLow(t *testing.T) {
	// reference 5, target 2: step 2.5, positions 0 and 2.5 -> index 2
	got, err := Resample(seq(5), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	// reference 3, target 2: step 1.5, position 1.5 -> index 1
	got, err = Resample(seq(3), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestResampleNonIntegralStep(t *testing.T) {
	// reference 10, target 3: positions 0, 3.33, 6.67 -> 0, 3, 7
	got, err := Resample(seq(10), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 7}, got)

	// reference 10, target 4: positions 0, 2.5, 5, 7.5 -> 0, 2, 5, 7
	got, err = Resample(seq(10), 4, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5, 7}, got)
}

func TestResampleWithPadding(t *testing.T) {
	// 4 frames padded to 8: [0 0 0 1 2 3 3 3], then step 2
	got, err := Resample([]int{0, 1, 2, 3}, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 2, 3}, got)
}

func TestResamplePreconditions(t *testing.T) {
	tests := []struct {
		name      string
		frames    []int
		target    int
		reference int
		wantErr   error
	}{
		{name: "target above reference", frames: seq(5), target: 6, reference: 5, wantErr: ErrTargetExceedsReference},
		{name: "reference below length", frames: seq(5), target: 3, reference: 4, wantErr: ErrReferenceTooShort},
		{name: "zero target", frames: seq(5), target: 0, reference: 5, wantErr: ErrInvalidLength},
		{name: "empty frames", frames: nil, target: 2, reference: 5, wantErr: ErrEmptySequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resample(tt.frames, tt.target, tt.reference)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeBatch(t *testing.T) {
	batch := [][]int{seq(4), seq(8), {42}}

	got, err := NormalizeBatch(batch, 4)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, s := range got {
		assert.Len(t, s, 4)
	}
	assert.Equal(t, []int{0, 2, 4, 6}, got[1])
	assert.Equal(t, []int{42, 42, 42, 42}, got[2])

	_, err = NormalizeBatch(batch, 9)
	assert.ErrorIs(t, err, ErrTargetExceedsReference)
}
