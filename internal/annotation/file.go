package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrMalformed    = errors.New("annotation: malformed")
	ErrUnknownLabel = errors.New("annotation: label not in vocabulary")
	ErrEmptyIndex   = errors.New("annotation: no usable samples")
)

// File is an annotation document:
//
//	{
//	  "labels": ["run", "walk"],
//	  "database": {
//	    "clip_0001": {
//	      "subset": "training",
//	      "video_path": "run/clip_0001",
//	      "annotations": {"label": "run", "segment": [0, 45]}
//	    }
//	  }
//	}
type File struct {
	Labels   []string `json:"labels"`
	Database Database `json:"database"`
}

// Record is one database entry. Pointer fields distinguish absent keys.
type Record struct {
	VideoID     string       `json:"-"`
	Subset      string       `json:"subset,omitempty"`
	VideoPath   *string      `json:"video_path,omitempty"`
	Annotations *Annotations `json:"annotations"`
}

type Annotations struct {
	Label   *string `json:"label,omitempty"`
	Segment []int   `json:"segment"`
}

// Database keeps records in document order, which fixes each sample's
// position in the index.
type Database []Record

func (d *Database) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("database must be an object")
	}

	out := Database{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id := tok.(string)
		if seen[id] {
			return fmt.Errorf("duplicate video_id %q", id)
		}
		seen[id] = true

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("record %q: %w", id, err)
		}
		rec.VideoID = id
		out = append(out, rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

func (d Database) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.VideoID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode reads an annotation document.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.Labels == nil {
		return nil, fmt.Errorf("%w: missing labels", ErrMalformed)
	}
	if f.Database == nil {
		return nil, fmt.Errorf("%w: missing database", ErrMalformed)
	}
	return &f, nil
}

// ReadFile decodes the annotation document at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
