// Package dataset serves fixed-shape clip tensors from a sample index.
//
// A Dataset is read-only after New and Get may be called from many
// goroutines at once. The frame Source behind the selector must allow
// concurrent calls as well.
package dataset

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/melody-ding/go-clipset/internal/annotation"
	"github.com/melody-ding/go-clipset/internal/augment"
	"github.com/melody-ding/go-clipset/internal/frames"
	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/metrics"
	"github.com/melody-ding/go-clipset/internal/types"
	"go.uber.org/zap"
)

var (
	ErrIndexOutOfRange    = errors.New("dataset: index out of range")
	ErrShapeMismatch      = errors.New("dataset: frame shapes differ")
	ErrUnknownTargetField = errors.New("dataset: unknown target field")
	ErrInvalidFrameLength = errors.New("dataset: frame length must be positive")
)

// TemporalTransform rewrites a sample's frame indices before loading.
type TemporalTransform func(frameIndices []int) []int

// TargetTransform rewrites the target before it is returned.
type TargetTransform func(Target) Target

type Dataset struct {
	index        *annotation.Index
	frameLength  int
	selector     frames.Selector
	spatial      augment.Transform
	normalize    *augment.Normalize
	temporal     TemporalTransform
	target       TargetTransform
	targetFields []string
	seed         *uint64
	logger       *zap.Logger
}

type Option func(*Dataset)

// WithSelector sets how frame directories are read. The default is a
// frames.LengthSelector decoding with frames.ImageSource.
func WithSelector(s frames.Selector) Option {
	return func(d *Dataset) { d.selector = s }
}

// WithSpatialTransform augments every frame of a clip with one shared draw.
func WithSpatialTransform(t augment.Transform) Option {
	return func(d *Dataset) { d.spatial = t }
}

func WithNormalize(n augment.Normalize) Option {
	return func(d *Dataset) { d.normalize = &n }
}

func WithTemporalTransform(t TemporalTransform) Option {
	return func(d *Dataset) { d.temporal = t }
}

func WithTargetTransform(t TargetTransform) Option {
	return func(d *Dataset) { d.target = t }
}

// WithTargetFields makes Get return the named sample fields as the target
// instead of the label id alone.
func WithTargetFields(fields ...string) Option {
	return func(d *Dataset) { d.targetFields = append([]string(nil), fields...) }
}

// WithSeed makes spatial draws reproducible: item i always gets the same draw.
func WithSeed(seed uint64) Option {
	return func(d *Dataset) { d.seed = &seed }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Dataset) { d.logger = l }
}

// New builds a dataset over index that returns clips of frameLength frames.
func New(index *annotation.Index, frameLength int, opts ...Option) (*Dataset, error) {
	if frameLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameLength, frameLength)
	}
	d := &Dataset{
		index:       index,
		frameLength: frameLength,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logger.OrNop(d.logger)
	if d.selector == nil {
		d.selector = frames.NewLengthSelector(frames.Options{Logger: d.logger})
	}
	for _, f := range d.targetFields {
		if !knownField(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTargetField, f)
		}
	}
	return d, nil
}

func (d *Dataset) Len() int { return d.index.Len() }

func (d *Dataset) FrameLength() int { return d.frameLength }

func (d *Dataset) Index() *annotation.Index { return d.index }

// Get loads item i as a channel, time, height, width clip and its target.
func (d *Dataset) Get(i int) (types.Clip, Target, error) {
	start := time.Now()
	clip, target, err := d.get(i)
	if err != nil {
		metrics.ClipsLoadedTotal.WithLabelValues("error").Inc()
		return types.Clip{}, Target{}, err
	}
	metrics.ClipsLoadedTotal.WithLabelValues("ok").Inc()
	metrics.ClipLoadDuration.Observe(time.Since(start).Seconds())
	return clip, target, nil
}

func (d *Dataset) get(i int) (types.Clip, Target, error) {
	sample, ok := d.index.Sample(i)
	if !ok {
		return types.Clip{}, Target{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, d.Len())
	}

	target := d.resolveTarget(sample)

	indices := sample.FrameIndices
	if d.temporal != nil {
		indices = d.temporal(indices)
	}

	sel, err := d.selector.Load(sample.Path, d.frameLength)
	if err != nil {
		return types.Clip{}, Target{}, fmt.Errorf("load %s: %w", sample.VideoID, err)
	}

	imgs := sel.Frames
	if d.spatial != nil {
		p := augment.Randomize(d.spatial, d.rng(i))
		imgs = augment.ApplyAll(d.spatial, imgs, p)
	}

	tensors, err := d.toTensors(imgs)
	if err != nil {
		return types.Clip{}, Target{}, fmt.Errorf("convert %s: %w", sample.VideoID, err)
	}
	stacked, err := Stack(tensors)
	if err != nil {
		return types.Clip{}, Target{}, fmt.Errorf("stack %s: %w", sample.VideoID, err)
	}

	if d.target != nil {
		target = d.target(target)
	}

	d.logger.Debug("clip loaded",
		zap.Int("index", i),
		zap.String("video_id", sample.VideoID),
		zap.Ints("shape", stacked.Shape),
	)

	return types.Clip{
		VideoID:      sample.VideoID,
		FrameIndices: indices,
		SourceFrames: sel.Decoded,
		Padded:       sel.Padded,
		Trimmed:      sel.Trimmed,
		Tensor:       stacked,
	}, target, nil
}

func (d *Dataset) toTensors(imgs []image.Image) ([]types.Tensor, error) {
	out := make([]types.Tensor, len(imgs))
	for k, img := range imgs {
		t := augment.ToTensor(img)
		if d.normalize != nil {
			var err error
			if t, err = d.normalize.Apply(t); err != nil {
				return nil, err
			}
		}
		out[k] = t
	}
	return out, nil
}

func (d *Dataset) rng(i int) *rand.Rand {
	if d.seed != nil {
		return rand.New(rand.NewPCG(*d.seed, uint64(i)))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Stack joins T tensors of shape C,H,W into one C,T,H,W tensor.
func Stack(frames []types.Tensor) (types.Tensor, error) {
	if len(frames) == 0 {
		return types.Tensor{}, fmt.Errorf("stack: no frames")
	}
	first := frames[0].Shape
	if len(first) != 3 {
		return types.Tensor{}, fmt.Errorf("%w: frame 0 has shape %v, want C,H,W", ErrShapeMismatch, first)
	}
	c, h, w := first[0], first[1], first[2]
	for k, f := range frames[1:] {
		if len(f.Shape) != 3 || f.Shape[0] != c || f.Shape[1] != h || f.Shape[2] != w {
			return types.Tensor{}, fmt.Errorf("%w: frame %d has shape %v, frame 0 %v", ErrShapeMismatch, k+1, f.Shape, first)
		}
	}

	n := len(frames)
	plane := h * w
	out := types.NewTensor(c, n, h, w)
	for t, f := range frames {
		for ch := 0; ch < c; ch++ {
			copy(out.Data[(ch*n+t)*plane:(ch*n+t+1)*plane], f.Data[ch*plane:(ch+1)*plane])
		}
	}
	return out, nil
}
