package processor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/melody-ding/go-clipset/internal/frames"
	"github.com/melody-ding/go-clipset/internal/types"
)

// createTestVideo creates a small test video file using ffmpeg
func createTestVideo(t *testing.T) string {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	path := filepath.Join(t.TempDir(), "test.mp4")

	// Create a 1-second test video with a solid color
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi",
		"-i", "color=c=red:s=256x256:d=1",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
		"-y",
	)
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name    string
		size    string
		want    Dimensions
		wantErr bool
	}{
		{
			name:    "valid dimensions",
			size:    "256x256",
			want:    Dimensions{Width: 256, Height: 256},
			wantErr: false,
		},
		{
			name:    "invalid format",
			size:    "256",
			want:    Dimensions{},
			wantErr: true,
		},
		{
			name:    "invalid width",
			size:    "abcx256",
			want:    Dimensions{},
			wantErr: true,
		},
		{
			name:    "invalid height",
			size:    "256xabc",
			want:    Dimensions{},
			wantErr: true,
		},
		{
			name:    "zero width",
			size:    "0x256",
			want:    Dimensions{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDimensions(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDimensions() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && (got.Width != tt.want.Width || got.Height != tt.want.Height) {
				t.Errorf("ParseDimensions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposeTransforms(t *testing.T) {
	got := ComposeTransforms(FPSTransform{FPS: 8}, ScaleTransform{Width: 128, Height: 96})
	if got != "fps=8,scale=128:96" {
		t.Errorf("ComposeTransforms() = %q", got)
	}
	if ComposeTransforms() != "" {
		t.Error("ComposeTransforms() with no transforms should be empty")
	}
}

func TestProcessClipRejectsBadSize(t *testing.T) {
	_, err := ProcessClip(types.Video{Key: "x"}, t.TempDir(), Options{FPS: 8, Size: "big"})
	if err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestWriteTempVideoUniquePerCall(t *testing.T) {
	clip := types.Video{Key: "same", RawData: []byte("first")}
	a, err := writeTempVideo(clip)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(a)

	clip.RawData = []byte("second")
	b, err := writeTempVideo(clip)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(b)

	if a == b {
		t.Fatalf("both calls wrote %s", a)
	}
	for path, want := range map[string]string{a: "first", b: "second"} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestProcessClip(t *testing.T) {
	testVideoPath := createTestVideo(t)

	videoData, err := os.ReadFile(testVideoPath)
	if err != nil {
		t.Fatal(err)
	}

	tempDir := t.TempDir()
	clip := types.Video{
		Key:     "test_clip",
		RawData: videoData,
	}

	for _, format := range []OutputFormat{FormatJPEG, FormatPNG} {
		t.Run(string(format), func(t *testing.T) {
			res, err := ProcessClip(clip, filepath.Join(tempDir, string(format)), Options{FPS: 8, Size: "64x64", Format: format})
			if err != nil {
				t.Fatalf("ProcessClip() error = %v", err)
			}
			if res.FrameCount == 0 {
				t.Fatal("No frames were created")
			}

			names, err := frames.ListFrames(res.Dir)
			if err != nil {
				t.Fatal(err)
			}
			if err := frames.CheckOrdering(names); err != nil {
				t.Errorf("extracted frame names do not sort: %v", err)
			}
			if !strings.HasSuffix(names[0], "."+string(format)) {
				t.Errorf("unexpected frame name %s", names[0])
			}

			f, err := frames.ImageSource{}.Decode(filepath.Join(res.Dir, names[0]))
			if err != nil {
				t.Fatal(err)
			}
			if f.Bounds().Dx() != 64 || f.Bounds().Dy() != 64 {
				t.Errorf("frame size = %v, want 64x64", f.Bounds())
			}
		})
	}
}
