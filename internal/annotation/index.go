package annotation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/metrics"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// NoLabel marks an unlabeled (test) sample.
const NoLabel = -1

// Sample is one loadable video in the index.
type Sample struct {
	VideoID      string
	Path         string
	Subset       string
	Segment      [2]int
	FrameIndices []int
	LabelID      int
}

// Stats counts what happened to the records while building an index.
type Stats struct {
	Records      int
	Kept         int
	MissingPath  int
	NoSegment    int
	OtherSubset  int
	Unlabeled    int
	ClassesTotal int
}

// Index is the immutable sample list and label vocabulary of a dataset.
// A sample's position is its key for the lifetime of the Index.
type Index struct {
	samples    []Sample
	vocabulary map[string]int
	classNames []string
	stats      Stats
}

func (ix *Index) Len() int { return len(ix.samples) }

// Sample returns a copy of the i-th sample.
func (ix *Index) Sample(i int) (Sample, bool) {
	if i < 0 || i >= len(ix.samples) {
		return Sample{}, false
	}
	s := ix.samples[i]
	s.FrameIndices = append([]int(nil), s.FrameIndices...)
	return s, true
}

// Paths lists every sample's frame directory in index order.
func (ix *Index) Paths() []string {
	out := make([]string, len(ix.samples))
	for i, s := range ix.samples {
		out[i] = s.Path
	}
	return out
}

// LabelID looks up a class name.
func (ix *Index) LabelID(name string) (int, bool) {
	id, ok := ix.vocabulary[name]
	return id, ok
}

// ClassName maps a label id back to its name; NoLabel and unknown ids give "".
func (ix *Index) ClassName(id int) string {
	if id < 0 || id >= len(ix.classNames) {
		return ""
	}
	return ix.classNames[id]
}

// Vocabulary returns a copy of the label name to id mapping.
func (ix *Index) Vocabulary() map[string]int {
	out := make(map[string]int, len(ix.vocabulary))
	for k, v := range ix.vocabulary {
		out[k] = v
	}
	return out
}

func (ix *Index) NumClasses() int { return len(ix.classNames) }

func (ix *Index) Stats() Stats { return ix.stats }

// PathFormatter builds a frame directory for records without video_path.
type PathFormatter func(root, label, videoID string) string

// DefaultPathFormatter lays videos out as root/label/videoID.
func DefaultPathFormatter(root, label, videoID string) string {
	return filepath.Join(root, label, videoID)
}

type BuildOptions struct {
	// Subset keeps only records of this subset when non-empty.
	Subset string
	// PathFormatter resolves records that lack video_path. Without one such
	// records are malformed.
	PathFormatter PathFormatter
	Logger        *zap.Logger
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// progressEvery is how often, in records, construction progress is logged.
const progressEvery = 20

// BuildVocabulary assigns ids 0..n-1 to labels in list order.
func BuildVocabulary(labels []string) (map[string]int, error) {
	vocab := make(map[string]int, len(labels))
	for i, name := range labels {
		if _, dup := vocab[name]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrMalformed, name)
		}
		vocab[name] = i
	}
	return vocab, nil
}

// Build turns annotation records into an Index rooted at root. Records
// whose frame directory does not exist or whose segment starts at -1 are
// dropped; structurally invalid records abort the build.
func Build(f *File, root string, opts BuildOptions) (*Index, error) {
	log := logger.OrNop(opts.Logger)

	vocab, err := BuildVocabulary(f.Labels)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		vocabulary: vocab,
		classNames: append([]string(nil), f.Labels...),
	}
	ix.stats.Records = len(f.Database)
	ix.stats.ClassesTotal = len(f.Labels)

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = newProgressBar(opts.Progress, len(f.Database), "Indexing")
		defer bar.Finish()
	}

	seen := make(map[string]bool, len(f.Database))
	for i, rec := range f.Database {
		if seen[rec.VideoID] {
			return nil, fmt.Errorf("%w: duplicate video_id %q", ErrMalformed, rec.VideoID)
		}
		seen[rec.VideoID] = true

		if bar != nil {
			bar.Add(1)
		}
		if (i+1)%progressEvery == 0 {
			log.Debug("dataset loading", zap.Int("done", i+1), zap.Int("total", len(f.Database)))
		}

		if opts.Subset != "" && rec.Subset != opts.Subset {
			ix.stats.OtherSubset++
			metrics.SamplesIndexedTotal.WithLabelValues("other_subset").Inc()
			continue
		}

		sample, err := resolve(rec, root, vocab, opts.PathFormatter)
		if err != nil {
			return nil, err
		}

		if !exists(sample.Path) {
			ix.stats.MissingPath++
			metrics.SamplesIndexedTotal.WithLabelValues("missing_path").Inc()
			log.Debug("skipping sample without frames", zap.String("video_id", rec.VideoID), zap.String("path", sample.Path))
			continue
		}
		if sample.Segment[0] == -1 {
			ix.stats.NoSegment++
			metrics.SamplesIndexedTotal.WithLabelValues("no_segment").Inc()
			continue
		}

		if sample.LabelID == NoLabel {
			ix.stats.Unlabeled++
		}
		ix.stats.Kept++
		metrics.SamplesIndexedTotal.WithLabelValues("kept").Inc()
		ix.samples = append(ix.samples, sample)
	}

	log.Info("sample index built",
		zap.Int("records", ix.stats.Records),
		zap.Int("kept", ix.stats.Kept),
		zap.Int("missing_path", ix.stats.MissingPath),
		zap.Int("no_segment", ix.stats.NoSegment),
		zap.Int("other_subset", ix.stats.OtherSubset),
	)

	if len(ix.samples) == 0 {
		return nil, fmt.Errorf("%w: %d records, none kept", ErrEmptyIndex, ix.stats.Records)
	}
	return ix, nil
}

// Load reads the annotation file at path and builds its index.
func Load(path, root string, opts BuildOptions) (*Index, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(f, root, opts)
}

func resolve(rec Record, root string, vocab map[string]int, format PathFormatter) (Sample, error) {
	if rec.Annotations == nil {
		return Sample{}, fmt.Errorf("%w: record %q: missing annotations", ErrMalformed, rec.VideoID)
	}
	seg := rec.Annotations.Segment
	if len(seg) != 2 {
		return Sample{}, fmt.Errorf("%w: record %q: segment needs 2 values, has %d", ErrMalformed, rec.VideoID, len(seg))
	}

	labelID, labelName := NoLabel, ""
	if rec.Annotations.Label != nil {
		labelName = *rec.Annotations.Label
		id, ok := vocab[labelName]
		if !ok {
			return Sample{}, fmt.Errorf("%w: record %q: %q", ErrUnknownLabel, rec.VideoID, labelName)
		}
		labelID = id
	}

	var path string
	switch {
	case rec.VideoPath != nil && filepath.IsAbs(*rec.VideoPath):
		path = *rec.VideoPath
	case rec.VideoPath != nil:
		path = filepath.Join(root, *rec.VideoPath)
	case format != nil:
		path = format(root, labelName, rec.VideoID)
	default:
		return Sample{}, fmt.Errorf("%w: record %q: missing video_path", ErrMalformed, rec.VideoID)
	}

	return Sample{
		VideoID:      rec.VideoID,
		Path:         path,
		Subset:       rec.Subset,
		Segment:      [2]int{seg[0], seg[1]},
		FrameIndices: []int{seg[0], seg[1]},
		LabelID:      labelID,
	}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newProgressBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
	)
}
