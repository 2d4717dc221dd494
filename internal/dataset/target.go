package dataset

import "github.com/melody-ding/go-clipset/internal/annotation"

// Target fields selectable with WithTargetFields.
const (
	FieldLabel        = "label"
	FieldVideoID      = "video_id"
	FieldVideo        = "video"
	FieldSegment      = "segment"
	FieldFrameIndices = "frame_indices"
	FieldSubset       = "subset"
)

// Target is what Get pairs with a clip. LabelID is always set; Fields
// holds the configured target fields in order, or is nil when none are.
type Target struct {
	LabelID int
	Fields  []any
}

func knownField(name string) bool {
	switch name {
	case FieldLabel, FieldVideoID, FieldVideo, FieldSegment, FieldFrameIndices, FieldSubset:
		return true
	}
	return false
}

func (d *Dataset) resolveTarget(s annotation.Sample) Target {
	t := Target{LabelID: s.LabelID}
	if len(d.targetFields) == 0 {
		return t
	}
	t.Fields = make([]any, len(d.targetFields))
	for i, f := range d.targetFields {
		switch f {
		case FieldLabel:
			t.Fields[i] = s.LabelID
		case FieldVideoID:
			t.Fields[i] = s.VideoID
		case FieldVideo:
			t.Fields[i] = s.Path
		case FieldSegment:
			t.Fields[i] = s.Segment
		case FieldFrameIndices:
			t.Fields[i] = append([]int(nil), s.FrameIndices...)
		case FieldSubset:
			t.Fields[i] = s.Subset
		}
	}
	return t
}
