package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Loader names accepted by LoaderKind.
const (
	LoaderLength   = "length"
	LoaderFullClip = "fullclip"
	LoaderResample = "resample"
)

type Config struct {
	RootPath       string   `env:"CLIPSET_ROOT"           envDefault:"data/frames"`
	AnnotationPath string   `env:"CLIPSET_ANNOTATION"     envDefault:"data/annotation.json"`
	Subset         string   `env:"CLIPSET_SUBSET"`
	FrameLength    int      `env:"CLIPSET_FRAME_LENGTH"   envDefault:"15"`
	LoaderKind     string   `env:"CLIPSET_LOADER"         envDefault:"length"`
	StrictOrdering bool     `env:"CLIPSET_STRICT_ORDERING" envDefault:"false"`
	TargetFields   []string `env:"CLIPSET_TARGET_FIELDS"  envSeparator:","`
	Seed           int64    `env:"CLIPSET_SEED"           envDefault:"0"`
	FrameSize      string   `env:"CLIPSET_FRAME_SIZE"     envDefault:"112x112"`

	ExtractFPS  int    `env:"CLIPSET_EXTRACT_FPS"  envDefault:"8"`
	ExtractSize string `env:"CLIPSET_EXTRACT_SIZE" envDefault:"256x256"`

	OutputDir string `env:"CLIPSET_OUTPUT_DIR" envDefault:"output"`
	ShardSize int    `env:"CLIPSET_SHARD_SIZE" envDefault:"100"`
	NpyDir    string `env:"CLIPSET_NPY_DIR"`

	S3Bucket string `env:"CLIPSET_S3_BUCKET"`
	S3Prefix string `env:"CLIPSET_S3_PREFIX" envDefault:"shards"`
	S3Region string `env:"CLIPSET_S3_REGION" envDefault:"us-east-1"`

	MetricsPort  int    `env:"CLIPSET_METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"CLIPSET_OTLP_ENDPOINT"`
	LogLevel     string `env:"CLIPSET_LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.FrameLength <= 0 {
		return fmt.Errorf("frame length must be positive, got %d", c.FrameLength)
	}
	switch c.LoaderKind {
	case LoaderLength, LoaderFullClip, LoaderResample:
	default:
		return fmt.Errorf("unknown loader %q", c.LoaderKind)
	}
	if c.ShardSize <= 0 {
		return fmt.Errorf("shard size must be positive, got %d", c.ShardSize)
	}
	return nil
}
