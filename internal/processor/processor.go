package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/melody-ding/go-clipset/internal/frames"
	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/types"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// OutputFormat is the image format frames are written in.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpg"
	FormatPNG  OutputFormat = "png"
)

// FramePattern names extracted frames. The zero padding keeps plain string
// order equal to temporal order.
const FramePattern = "image_%05d"

// Dimensions is a frame size in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// ParseDimensions parses a WIDTHxHEIGHT size string such as "256x256".
func ParseDimensions(size string) (Dimensions, error) {
	dimensions := strings.Split(size, "x")
	if len(dimensions) != 2 {
		return Dimensions{}, fmt.Errorf("invalid size format: %s", size)
	}
	width, err := strconv.Atoi(dimensions[0])
	if err != nil || width <= 0 {
		return Dimensions{}, fmt.Errorf("invalid width: %s", dimensions[0])
	}
	height, err := strconv.Atoi(dimensions[1])
	if err != nil || height <= 0 {
		return Dimensions{}, fmt.Errorf("invalid height: %s", dimensions[1])
	}
	return Dimensions{Width: width, Height: height}, nil
}

// Options controls frame extraction.
type Options struct {
	FPS    int
	Size   string
	Format OutputFormat
	Logger *zap.Logger
}

// Result describes one extracted frame directory.
type Result struct {
	Dir        string
	FrameCount int
}

// ProcessClip writes the frames of clip into outputDir/<key>/ as
// image_00001.jpg, image_00002.jpg, ... at the requested rate and size.
func ProcessClip(clip types.Video, outputDir string, opts Options) (*Result, error) {
	log := logger.OrNop(opts.Logger)
	format := opts.Format
	if format == "" {
		format = FormatJPEG
	}

	dims, err := ParseDimensions(opts.Size)
	if err != nil {
		return nil, err
	}

	tempVideoPath, err := writeTempVideo(clip)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempVideoPath)

	outPath := filepath.Join(outputDir, clip.Key)
	if err := os.MkdirAll(outPath, 0755); err != nil {
		return nil, err
	}

	transforms := []Transform{
		FPSTransform{FPS: opts.FPS},
		ScaleTransform{Width: dims.Width, Height: dims.Height},
	}

	log.Debug("extracting frames",
		zap.String("key", clip.Key),
		zap.String("filters", ComposeTransforms(transforms...)),
	)

	pattern := filepath.Join(outPath, FramePattern+"."+string(format))
	err = ApplyTransforms(ffmpeg.Input(tempVideoPath), transforms...).
		Output(pattern, ffmpeg.KwArgs{"qscale:v": 2}).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w", clip.Key, err)
	}

	names, err := frames.ListFrames(outPath)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", clip.Key)
	}

	log.Info("frames extracted", zap.String("key", clip.Key), zap.Int("count", len(names)))
	return &Result{Dir: outPath, FrameCount: len(names)}, nil
}

// writeTempVideo stores the clip bytes in a uniquely named temp file so
// concurrent extractions of equal keys never share an input.
func writeTempVideo(clip types.Video) (string, error) {
	f, err := os.CreateTemp("", "clipset-"+clip.Key+"-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create temp video: %w", err)
	}
	if _, err := f.Write(clip.RawData); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp video: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp video: %w", err)
	}
	return f.Name(), nil
}
