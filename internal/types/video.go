package types

// Video is a raw encoded video read from an input archive, keyed by its
// file name without extension.
type Video struct {
	Key     string
	RawData []byte
}
