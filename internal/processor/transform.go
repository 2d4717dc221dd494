package processor

import (
	"fmt"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Transform is one ffmpeg video filter.
type Transform interface {
	// Filter returns the ffmpeg filter name and its positional argument.
	Filter() (string, string)
}

// FPSTransform sets the output frame rate
type FPSTransform struct {
	FPS int
}

func (t FPSTransform) Filter() (string, string) {
	return "fps", fmt.Sprintf("%d", t.FPS)
}

// ScaleTransform resizes the video
type ScaleTransform struct {
	Width  int
	Height int
}

func (t ScaleTransform) Filter() (string, string) {
	return "scale", fmt.Sprintf("%d:%d", t.Width, t.Height)
}

// ApplyTransforms chains transforms onto stream in order.
func ApplyTransforms(stream *ffmpeg.Stream, transforms ...Transform) *ffmpeg.Stream {
	for _, t := range transforms {
		name, arg := t.Filter()
		stream = stream.Filter(name, ffmpeg.Args{arg})
	}
	return stream
}

// ComposeTransforms renders transforms as an ffmpeg -vf filter graph.
func ComposeTransforms(transforms ...Transform) string {
	var args []string
	for _, t := range transforms {
		name, arg := t.Filter()
		args = append(args, name+"="+arg)
	}
	return strings.Join(args, ",")
}
