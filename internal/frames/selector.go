package frames

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/metrics"
	"go.uber.org/zap"
)

// Selection is the frame sequence chosen for one clip together with what
// the selector saw on disk.
type Selection struct {
	Frames  []Frame
	Listed  int
	Decoded int
	Padded  bool
	Trimmed bool
}

// Selector loads a frame directory as a sequence of about length frames.
// The exact length guarantee depends on the implementation.
type Selector interface {
	Load(dir string, length int) (*Selection, error)
}

// Options configures how selectors read a frame directory.
type Options struct {
	// Source decodes each frame; ImageSource when nil.
	Source Source
	Logger *zap.Logger
	// Strict turns a frame ordering warning into ErrFrameOrder.
	Strict bool
}

func (o Options) source() Source {
	if o.Source == nil {
		return ImageSource{}
	}
	return o.Source
}

func (o Options) log() *zap.Logger {
	return logger.OrNop(o.Logger)
}

// ListFrames returns the file names in dir in plain string order.
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// readAll decodes every listed frame of dir that still exists. It returns
// the decoded frames and the number of names that were listed.
func (o Options) readAll(dir string) ([]Frame, int, error) {
	names, err := ListFrames(dir)
	if err != nil {
		return nil, 0, err
	}
	log := o.log().With(zap.String("dir", dir))

	if err := CheckOrdering(names); err != nil {
		if o.Strict {
			return nil, len(names), err
		}
		log.Warn("frame names may not sort in temporal order", zap.Error(err))
	}

	src := o.source()
	frames := make([]Frame, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			metrics.FramesVanishedTotal.Inc()
			log.Warn("frame vanished before decode", zap.String("frame", name))
			continue
		}
		f, err := src.Decode(path)
		if errors.Is(err, fs.ErrNotExist) {
			metrics.FramesVanishedTotal.Inc()
			log.Warn("frame vanished before decode", zap.String("frame", name))
			continue
		}
		if err != nil {
			return nil, len(names), fmt.Errorf("frame %s: %w", path, err)
		}
		frames = append(frames, f)
	}
	metrics.FramesDecodedTotal.Add(float64(len(frames)))

	if len(frames) == 0 {
		return nil, len(names), fmt.Errorf("%w: %s", ErrNoFrames, dir)
	}
	return frames, len(names), nil
}

// padFront prepends count copies of the first frame. The count comes from
// the listed file count, so a vanished file leaves the result short.
func padFront(frames []Frame, count int) []Frame {
	if count <= 0 {
		return frames
	}
	out := make([]Frame, 0, count+len(frames))
	for i := 0; i < count; i++ {
		out = append(out, frames[0])
	}
	return append(out, frames...)
}

// LengthSelector returns length frames: clips with at least length decoded
// frames are decimated with stride n/length and truncated, shorter clips
// are left-padded with their first frame.
type LengthSelector struct {
	Options
}

func NewLengthSelector(opts Options) *LengthSelector {
	return &LengthSelector{Options: opts}
}

func (s *LengthSelector) Load(dir string, length int) (*Selection, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	frames, listed, err := s.readAll(dir)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Listed: listed, Decoded: len(frames)}
	n := len(frames)
	if n >= length {
		stride := n / length
		picked := make([]Frame, 0, length)
		for i := 0; i < n && len(picked) < length; i += stride {
			picked = append(picked, frames[i])
		}
		sel.Frames = picked
		sel.Trimmed = n > length
		metrics.SelectionsTotal.WithLabelValues("decimated").Inc()
		return sel, nil
	}

	sel.Frames = padFront(frames, length-listed)
	sel.Padded = len(sel.Frames) > n
	metrics.SelectionsTotal.WithLabelValues("padded").Inc()
	return sel, nil
}

// FullClipSelector returns every decoded frame, left-padding with the first
// frame when there are fewer than length. It never truncates.
type FullClipSelector struct {
	Options
}

func NewFullClipSelector(opts Options) *FullClipSelector {
	return &FullClipSelector{Options: opts}
}

func (s *FullClipSelector) Load(dir string, length int) (*Selection, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	frames, listed, err := s.readAll(dir)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Listed: listed, Decoded: len(frames), Frames: frames}
	if len(frames) < length {
		sel.Frames = padFront(frames, length-listed)
		sel.Padded = len(sel.Frames) > len(frames)
		metrics.SelectionsTotal.WithLabelValues("padded").Inc()
		return sel, nil
	}
	metrics.SelectionsTotal.WithLabelValues("full").Inc()
	return sel, nil
}

// ResampleSelector pads every clip to Reference frames and resamples it to
// length. A zero Reference uses the clip's own frame count.
type ResampleSelector struct {
	Options
	Reference int
}

func NewResampleSelector(opts Options, reference int) *ResampleSelector {
	return &ResampleSelector{Options: opts, Reference: reference}
}

func (s *ResampleSelector) Load(dir string, length int) (*Selection, error) {
	frames, listed, err := s.readAll(dir)
	if err != nil {
		return nil, err
	}

	ref := s.Reference
	if ref == 0 {
		ref = len(frames)
	}
	out, err := Resample(frames, length, ref)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", dir, err)
	}
	metrics.SelectionsTotal.WithLabelValues("resampled").Inc()
	return &Selection{
		Frames:  out,
		Listed:  listed,
		Decoded: len(frames),
		Padded:  ref > len(frames),
		Trimmed: length < ref,
	}, nil
}

// LongestSequence returns the largest frame count among dirs, suitable as
// a ResampleSelector reference length.
func LongestSequence(dirs []string) (int, error) {
	longest := 0
	for _, dir := range dirs {
		names, err := ListFrames(dir)
		if err != nil {
			return 0, err
		}
		longest = max(longest, len(names))
	}
	return longest, nil
}
