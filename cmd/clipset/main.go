package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/melody-ding/go-clipset/internal/annotation"
	"github.com/melody-ding/go-clipset/internal/augment"
	"github.com/melody-ding/go-clipset/internal/config"
	"github.com/melody-ding/go-clipset/internal/dataset"
	"github.com/melody-ding/go-clipset/internal/frames"
	"github.com/melody-ding/go-clipset/internal/logger"
	"github.com/melody-ding/go-clipset/internal/metrics"
	"github.com/melody-ding/go-clipset/internal/processor"
	"github.com/melody-ding/go-clipset/internal/sharding"
	"github.com/melody-ding/go-clipset/internal/storage"
	"github.com/melody-ding/go-clipset/internal/tar_reader"
	"github.com/melody-ding/go-clipset/internal/tracing"
	"github.com/melody-ding/go-clipset/internal/ui"
	"go.uber.org/zap"
)

const usage = `usage: clipset <command> [flags]

commands:
  extract   extract frame directories from a tar of videos
  index     build the sample index from an annotation file and print a summary
  export    write fixed-length clips as WebDataset shards`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one subcommand and returns the process exit code. Every
// deferred cleanup has finished by the time it returns.
func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		return fail("load config", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "extract":
		err = runExtract(cfg, args[1:])
	case "index":
		err = runIndex(cfg, args[1:])
	case "export":
		err = runExport(ctx, cfg, args[1:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		return fail(args[0], err)
	}
	return 0
}

func fail(what string, err error) int {
	fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(fmt.Sprintf("%s: %v", what, err)))
	return 1
}

func newLogger(level string) (*zap.Logger, error) {
	log, err := logger.New(level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func runExtract(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	tarPath := fs.String("tar", "videos.tar", "Path to input .tar archive")
	outputDir := fs.String("out", cfg.RootPath, "Directory to save extracted frames")
	fps := fs.Int("fps", cfg.ExtractFPS, "Target frames per second")
	size := fs.String("size", cfg.ExtractSize, "Resize videos to this resolution (e.g. 256x256)")
	format := fs.String("format", string(processor.FormatJPEG), "Frame image format (jpg or png)")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level")
	fs.Parse(args)

	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	clips, err := tar_reader.ExtractClipsFromTar(*tarPath)
	if err != nil {
		return fmt.Errorf("extracting tar: %w", err)
	}

	failed := 0
	for _, clip := range clips {
		res, err := processor.ProcessClip(clip, *outputDir, processor.Options{
			FPS:    *fps,
			Size:   *size,
			Format: processor.OutputFormat(*format),
			Logger: log,
		})
		if err != nil {
			failed++
			log.Error("processing clip failed", zap.String("key", clip.Key), zap.Error(err))
			continue
		}
		fmt.Printf("%s %s (%d frames)\n", ui.SuccessStyle.Render("✓"), res.Dir, res.FrameCount)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d clips failed", failed, len(clips))
	}
	return nil
}

type datasetFlags struct {
	root, annotation, subset, loader, fields, size, logLevel *string
	frameLength                                              *int
	strict                                                   *bool
	seed                                                     *int64
}

func addDatasetFlags(fs *flag.FlagSet, cfg *config.Config) *datasetFlags {
	return &datasetFlags{
		root:        fs.String("root", cfg.RootPath, "Root directory of frame directories"),
		annotation:  fs.String("annotation", cfg.AnnotationPath, "Annotation JSON file"),
		subset:      fs.String("subset", cfg.Subset, "Only index records of this subset"),
		loader:      fs.String("loader", cfg.LoaderKind, "Frame selector: length, fullclip or resample"),
		fields:      fs.String("target-fields", strings.Join(cfg.TargetFields, ","), "Comma separated sample fields returned as target"),
		size:        fs.String("frame-size", cfg.FrameSize, "Resize frames to WIDTHxHEIGHT before stacking"),
		logLevel:    fs.String("log-level", cfg.LogLevel, "Log level"),
		frameLength: fs.Int("frame-length", cfg.FrameLength, "Frames per clip"),
		strict:      fs.Bool("strict-ordering", cfg.StrictOrdering, "Fail on frame names that do not sort in temporal order"),
		seed:        fs.Int64("seed", cfg.Seed, "Seed for spatial augmentation draws (0 draws freshly)"),
	}
}

func (f *datasetFlags) buildIndex(log *zap.Logger) (*annotation.Index, error) {
	return annotation.Load(*f.annotation, *f.root, annotation.BuildOptions{
		Subset:        *f.subset,
		PathFormatter: annotation.DefaultPathFormatter,
		Logger:        log,
		Progress:      os.Stderr,
	})
}

func (f *datasetFlags) buildDataset(ix *annotation.Index, log *zap.Logger) (*dataset.Dataset, error) {
	sel, err := dataset.NewSelector(*f.loader, ix, frames.Options{Logger: log, Strict: *f.strict})
	if err != nil {
		return nil, err
	}
	dims, err := processor.ParseDimensions(*f.size)
	if err != nil {
		return nil, err
	}

	opts := []dataset.Option{
		dataset.WithSelector(sel),
		dataset.WithSpatialTransform(augment.Resize{Width: dims.Width, Height: dims.Height}),
		dataset.WithLogger(log),
	}
	if *f.fields != "" {
		opts = append(opts, dataset.WithTargetFields(strings.Split(*f.fields, ",")...))
	}
	if *f.seed != 0 {
		opts = append(opts, dataset.WithSeed(uint64(*f.seed)))
	}
	return dataset.New(ix, *f.frameLength, opts...)
}

func runIndex(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	df := addDatasetFlags(fs, cfg)
	fs.Parse(args)

	log, err := newLogger(*df.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ix, err := df.buildIndex(log)
	if err != nil {
		return err
	}

	fmt.Println(ui.TitleStyle.Render("Sample index"))
	fmt.Println(ui.RenderIndexSummary(ix))
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	df := addDatasetFlags(fs, cfg)
	outputDir := fs.String("out", cfg.OutputDir, "Directory to write shards to")
	shardSize := fs.Int("shard-size", cfg.ShardSize, "Samples per shard")
	bucket := fs.String("s3-bucket", cfg.S3Bucket, "Upload shards to this S3 bucket when set")
	npyDir := fs.String("npy-dir", cfg.NpyDir, "Also write every clip as a loose .npy file here when set")
	fs.Parse(args)

	log, err := newLogger(*df.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}
	if cfg.MetricsPort > 0 {
		srv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	ix, err := df.buildIndex(log)
	if err != nil {
		return err
	}
	ds, err := df.buildDataset(ix, log)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	shards, err := sharding.CreateWebDatasetShards(ctx, ds, *outputDir, sharding.Options{
		ShardSize: *shardSize,
		RunID:     runID,
		NpyDir:    *npyDir,
		Logger:    log,
		Progress:  os.Stderr,
	})
	if err != nil {
		return err
	}

	var uploaded []string
	if *bucket != "" {
		up, err := storage.NewS3Uploader(storage.S3Config{
			Region: cfg.S3Region,
			Bucket: *bucket,
			Prefix: cfg.S3Prefix + "/" + runID,
		}, log)
		if err != nil {
			return err
		}
		if uploaded, err = up.UploadFiles(ctx, shards); err != nil {
			return err
		}
	}

	fmt.Println(ui.TitleStyle.Render("Export complete"))
	fmt.Println(ui.RenderExportSummary(runID, ds.Len(), shards, uploaded))
	return nil
}
