package types

// ClipMetadata describes an exported clip next to its tensor in a shard.
type ClipMetadata struct {
	Key            string `json:"key"`
	Label          int    `json:"label"`
	ClassName      string `json:"class_name,omitempty"`
	Segment        [2]int `json:"segment"`
	FrameCount     int    `json:"frame_count"`
	Shape          []int  `json:"shape"`
	OriginalFrames int    `json:"original_frames,omitempty"`
	IsPadded       bool   `json:"is_padded,omitempty"`
	IsTrimmed      bool   `json:"is_trimmed,omitempty"`
	RunID          string `json:"run_id,omitempty"`
}
