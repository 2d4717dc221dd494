package numpy

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/melody-ding/go-clipset/internal/types"
)

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.npy")

	writer, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	tensor := types.Tensor{Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6.5}}
	if err := writer.Write(tensor); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	fileData, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Check magic string
	if string(fileData[0:6]) != "\x93NUMPY" {
		t.Error("Invalid magic string in NPY file")
	}

	// Check version
	if fileData[6] != 0x01 || fileData[7] != 0x00 {
		t.Error("Invalid version in NPY file")
	}

	headerLen := int(binary.LittleEndian.Uint16(fileData[8:10]))
	if (10+headerLen)%64 != 0 {
		t.Errorf("header not aligned to 64 bytes: %d", 10+headerLen)
	}
	header := string(fileData[10 : 10+headerLen])
	if !strings.Contains(header, "'descr': '<f4'") || !strings.Contains(header, "'shape': (2, 3)") {
		t.Errorf("unexpected header %q", header)
	}
	if !strings.HasSuffix(header, "\n") {
		t.Error("header must end with a newline")
	}

	body := fileData[10+headerLen:]
	if len(body) != 6*4 {
		t.Fatalf("body has %d bytes, want 24", len(body))
	}
	last := math.Float32frombits(binary.LittleEndian.Uint32(body[20:24]))
	if last != 6.5 {
		t.Errorf("last element = %v, want 6.5", last)
	}
}

func TestCreateHeaderShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		want  string
	}{
		{name: "1D array", shape: []int{3}, want: "(3, )"},
		{name: "2D array", shape: []int{2, 3}, want: "(2, 3)"},
		{name: "clip", shape: []int{3, 15, 112, 112}, want: "(3, 15, 112, 112)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := createHeader(tt.shape)
			if err != nil {
				t.Fatal(err)
			}
			if len(header)%64 != 0 {
				t.Errorf("header length %d not a multiple of 64", len(header))
			}
			if !strings.Contains(string(header), tt.want) {
				t.Errorf("header %q missing shape %s", header, tt.want)
			}
		})
	}
}

func TestEncodeRejectsBadTensor(t *testing.T) {
	_, err := Marshal(types.Tensor{Shape: []int{2, 2}, Data: []float32{1}})
	if err == nil {
		t.Error("expected error for short data")
	}
}
