package tar_reader

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/melody-ding/go-clipset/internal/types"
)

// VideoExtensions are the archive members treated as videos.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// ExtractClipsFromTar reads every video member of the tar at tarPath. Keys
// are member base names without extension and must be unique, since each
// becomes a frame directory name.
func ExtractClipsFromTar(tarPath string) ([]types.Video, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadVideos(f)
}

// ReadVideos reads video members from a tar stream.
func ReadVideos(r io.Reader) ([]types.Video, error) {
	tr := tar.NewReader(r)
	var clips []types.Video
	seen := map[string]string{}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		base := filepath.Base(hdr.Name)
		ext := strings.ToLower(filepath.Ext(base))
		// skip macOS resource forks such as ._clip.mp4
		if !VideoExtensions[ext] || strings.HasPrefix(base, "._") {
			continue
		}

		key := strings.TrimSuffix(base, filepath.Ext(base))
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate video key %q from %s and %s", key, prev, hdr.Name)
		}
		seen[key] = hdr.Name

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, tr); err != nil {
			return nil, err
		}

		clips = append(clips, types.Video{Key: key, RawData: buf.Bytes()})
	}

	return clips, nil
}
