package sharding

import (
	"archive/tar"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/melody-ding/go-clipset/internal/annotation"
	"github.com/melody-ding/go-clipset/internal/dataset"
	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/metrics"
	"github.com/melody-ding/go-clipset/internal/numpy"
	"github.com/melody-ding/go-clipset/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrDuplicateKey is returned when two video ids map to the same sample key.
var ErrDuplicateKey = errors.New("sharding: duplicate sample key")

// Source is the dataset being exported.
type Source interface {
	Len() int
	Get(i int) (types.Clip, dataset.Target, error)
	Index() *annotation.Index
}

type Options struct {
	// ShardSize is the number of samples per shard.
	ShardSize int
	// RunID is stamped into every sample's metadata.
	RunID    string
	// NpyDir, when set, also receives every clip as a loose <key>.npy file.
	NpyDir   string
	Logger   *zap.Logger
	Progress io.Writer
}

// CreateWebDatasetShards writes every sample of src into
// outputDir/shard_00000.tar, shard_00001.tar, ... Each sample contributes
// <key>.npy with the float32 C,T,H,W clip and <key>.json with its
// ClipMetadata. It returns the shard paths in order.
func CreateWebDatasetShards(ctx context.Context, src Source, outputDir string, opts Options) ([]string, error) {
	if opts.ShardSize <= 0 {
		return nil, fmt.Errorf("shard size must be positive, got %d", opts.ShardSize)
	}
	log := logger.OrNop(opts.Logger)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output dir: %w", err)
	}
	if opts.NpyDir != "" {
		if err := os.MkdirAll(opts.NpyDir, 0755); err != nil {
			return nil, fmt.Errorf("error creating npy dir: %w", err)
		}
	}

	ctx, span := otel.Tracer("sharding").Start(ctx, "CreateWebDatasetShards")
	defer span.End()

	total := src.Len()
	span.SetAttributes(attribute.Int("samples", total), attribute.Int("shard_size", opts.ShardSize))

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Exporting"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetWidth(50),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()
	}

	numShards := (total + opts.ShardSize - 1) / opts.ShardSize
	keys := make(map[string]string, total)
	var shards []string
	for i := 0; i < numShards; i++ {
		start := i * opts.ShardSize
		end := min((i+1)*opts.ShardSize, total)

		shardPath := filepath.Join(outputDir, fmt.Sprintf("shard_%05d.tar", i))
		if err := createShard(ctx, shardPath, src, start, end, keys, opts, bar); err != nil {
			return shards, fmt.Errorf("error creating shard %d: %w", i, err)
		}
		metrics.ShardsWrittenTotal.Inc()
		log.Info("shard written", zap.String("path", shardPath), zap.Int("samples", end-start))
		shards = append(shards, shardPath)
	}

	return shards, nil
}

// createShard writes samples [start, end) of src into one tar file. keys
// maps every sample key written so far in the run to its video id.
func createShard(ctx context.Context, shardPath string, src Source, start, end int, keys map[string]string, opts Options, bar *progressbar.ProgressBar) error {
	_, span := otel.Tracer("sharding").Start(ctx, "createShard")
	defer span.End()
	span.SetAttributes(attribute.String("path", shardPath), attribute.Int("start", start), attribute.Int("end", end))

	tarFile, err := os.Create(shardPath)
	if err != nil {
		return fmt.Errorf("error creating tar file: %w", err)
	}
	defer tarFile.Close()

	tw := tar.NewWriter(tarFile)

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		clip, target, err := src.Get(i)
		if err != nil {
			return fmt.Errorf("error loading sample %d: %w", i, err)
		}
		sample, _ := src.Index().Sample(i)

		key := SampleKey(clip.VideoID)
		if prev, dup := keys[key]; dup {
			return fmt.Errorf("%w: %q from %q and %q", ErrDuplicateKey, key, prev, clip.VideoID)
		}
		keys[key] = clip.VideoID
		meta := types.ClipMetadata{
			Key:            key,
			Label:          target.LabelID,
			ClassName:      src.Index().ClassName(sample.LabelID),
			Segment:        sample.Segment,
			FrameCount:     clip.Frames(),
			Shape:          clip.Shape,
			OriginalFrames: clip.SourceFrames,
			IsPadded:       clip.Padded,
			IsTrimmed:      clip.Trimmed,
			RunID:          opts.RunID,
		}

		data, err := numpy.Marshal(clip.Tensor)
		if err != nil {
			return fmt.Errorf("error encoding sample %s: %w", key, err)
		}
		if err := writeEntry(tw, key+".npy", data); err != nil {
			return err
		}

		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("error encoding metadata %s: %w", key, err)
		}
		if err := writeEntry(tw, key+".json", metaJSON); err != nil {
			return err
		}

		if opts.NpyDir != "" {
			if err := writeNpy(filepath.Join(opts.NpyDir, key+".npy"), clip.Tensor); err != nil {
				return err
			}
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("error closing tar: %w", err)
	}
	return tarFile.Close()
}

func writeNpy(path string, t types.Tensor) error {
	w, err := numpy.NewWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(t); err != nil {
		w.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return w.Close()
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("error writing tar header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("error writing tar data: %w", err)
	}
	return nil
}

// SampleKey makes a WebDataset sample key from a video id. WebDataset
// splits key from extension at the first dot, so dots and path separators
// are replaced. Distinct ids can share a key; CreateWebDatasetShards
// rejects that with ErrDuplicateKey.
func SampleKey(videoID string) string {
	return strings.NewReplacer(".", "_", "/", "_", "\\", "_").Replace(videoID)
}
