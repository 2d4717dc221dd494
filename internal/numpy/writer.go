package numpy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/melody-ding/go-clipset/internal/types"
)

// Writer writes a float32 tensor to a NumPy (.npy) file.
type Writer struct {
	file *os.File
}

// NewWriter creates a new NumPy writer for the given file
func NewWriter(filepath string) (*Writer, error) {
	file, err := os.Create(filepath)
	if err != nil {
		return nil, fmt.Errorf("error creating npy file: %w", err)
	}
	return &Writer{file: file}, nil
}

// Close closes the underlying file
func (w *Writer) Close() error {
	return w.file.Close()
}

// Write writes t to the file.
func (w *Writer) Write(t types.Tensor) error {
	return Encode(w.file, t)
}

// Encode writes t as a little-endian float32, C-ordered .npy v1.0 array.
func Encode(w io.Writer, t types.Tensor) error {
	if err := t.Validate(); err != nil {
		return err
	}
	header, err := createHeader(t.Shape)
	if err != nil {
		return fmt.Errorf("error creating numpy header: %w", err)
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("error writing npy header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, t.Data); err != nil {
		return fmt.Errorf("error writing npy data: %w", err)
	}
	return nil
}

// Marshal returns the .npy encoding of t.
func Marshal(t types.Tensor) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// createHeader creates a NumPy array header with the given shape
func createHeader(shape []int) ([]byte, error) {
	var shapeStr bytes.Buffer
	shapeStr.WriteString("{'descr': '<f4', 'fortran_order': False, 'shape': (")
	for i, s := range shape {
		shapeStr.WriteString(fmt.Sprintf("%d", s))
		if i < len(shape)-1 || len(shape) == 1 {
			shapeStr.WriteString(", ")
		}
	}
	shapeStr.WriteString("), }")

	// The dictionary is terminated by a newline and the whole header padded
	// with spaces to a multiple of 64 bytes.
	dictLen := shapeStr.Len() + 1
	currentHeaderSize := dictLen + 10 // 10 = len(magic+version) + len(header_len_prefix)
	padding := (64 - (currentHeaderSize % 64)) % 64
	if dictLen+padding > 0xFFFF {
		return nil, fmt.Errorf("shape %v too large for npy v1.0 header", shape)
	}

	var fullHeader bytes.Buffer

	// Magic string and version (NPY v1.0) - 8 bytes
	fullHeader.Write([]byte{0x93, 'N', 'U', 'M', 'P', 'Y', 0x01, 0x00})

	// Header length (uint16 little-endian) - 2 bytes
	headerDictWithPaddingLen := uint16(dictLen + padding)
	if err := binary.Write(&fullHeader, binary.LittleEndian, headerDictWithPaddingLen); err != nil {
		return nil, fmt.Errorf("failed to write header dictionary length: %w", err)
	}

	fullHeader.Write(shapeStr.Bytes())
	fullHeader.Write(bytes.Repeat([]byte{' '}, padding))
	fullHeader.WriteByte('\n')

	return fullHeader.Bytes(), nil
}
