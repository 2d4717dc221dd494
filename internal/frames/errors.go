package frames

import "errors"

var (
	ErrEmptySequence          = errors.New("frames: empty frame sequence")
	ErrInvalidLength          = errors.New("frames: length must be positive")
	ErrReferenceTooShort      = errors.New("frames: reference length shorter than sequence")
	ErrTargetExceedsReference = errors.New("frames: target length exceeds reference length")
	ErrNoFrames               = errors.New("frames: no decodable frames in directory")
	ErrFrameOrder             = errors.New("frames: file names do not sort in temporal order")
)
