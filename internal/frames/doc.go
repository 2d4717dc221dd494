// Package frames turns a directory of per-frame images into a fixed-length
// frame sequence.
//
// Frame directories hold one image per time step, and plain string ordering
// of the file names must match temporal order (image_00001.jpg, image_00002.jpg,
// ...). CheckOrdering detects names that break this.
//
// Three selectors are provided:
//
//   - LengthSelector decimates long clips and left-pads short ones with
//     copies of the first frame.
//   - FullClipSelector only pads; it never drops frames.
//   - ResampleSelector pads symmetrically to a reference length and then
//     picks frames by nearest-neighbour resampling (see Resample).
//
// All selectors are safe for concurrent use as long as their Source is.
package frames
