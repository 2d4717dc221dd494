package dataset

import (
	"fmt"

	"github.com/melody-ding/go-clipset/internal/annotation"
	"github.com/melody-ding/go-clipset/internal/config"
	"github.com/melody-ding/go-clipset/internal/frames"
)

// NewSelector builds the selector named by kind. The resample selector
// takes its reference length from the longest frame directory in index.
func NewSelector(kind string, index *annotation.Index, opts frames.Options) (frames.Selector, error) {
	switch kind {
	case config.LoaderLength:
		return frames.NewLengthSelector(opts), nil
	case config.LoaderFullClip:
		return frames.NewFullClipSelector(opts), nil
	case config.LoaderResample:
		ref, err := frames.LongestSequence(index.Paths())
		if err != nil {
			return nil, fmt.Errorf("reference length: %w", err)
		}
		return frames.NewResampleSelector(opts, ref), nil
	}
	return nil, fmt.Errorf("unknown loader %q", kind)
}
