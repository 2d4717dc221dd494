package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.FrameLength)
	assert.Equal(t, LoaderLength, cfg.LoaderKind)
	assert.Equal(t, 100, cfg.ShardSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.TargetFields)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLIPSET_FRAME_LENGTH", "20")
	t.Setenv("CLIPSET_LOADER", "fullclip")
	t.Setenv("CLIPSET_TARGET_FIELDS", "video_id,label")
	t.Setenv("CLIPSET_NPY_DIR", "out/npy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.FrameLength)
	assert.Equal(t, LoaderFullClip, cfg.LoaderKind)
	assert.Equal(t, []string{"video_id", "label"}, cfg.TargetFields)
	assert.Equal(t, "out/npy", cfg.NpyDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero frame length", key: "CLIPSET_FRAME_LENGTH", val: "0"},
		{name: "unknown loader", key: "CLIPSET_LOADER", val: "bilinear"},
		{name: "zero shard size", key: "CLIPSET_SHARD_SIZE", val: "0"},
		{name: "not a number", key: "CLIPSET_FRAME_LENGTH", val: "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
