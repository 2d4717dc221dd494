package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/melody-ding/go-clipset/internal/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClasses(t *testing.T) {
	got := formatClasses(map[string]int{"walk": 1, "run": 0, "jump": 2})
	assert.Equal(t, "0:run 1:walk 2:jump", got)
	assert.Equal(t, "", formatClasses(nil))
}

func TestRenderIndexSummary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))
	path := "a"
	label := "run"
	ix, err := annotation.Build(&annotation.File{
		Labels: []string{"run", "walk"},
		Database: annotation.Database{
			{VideoID: "a", VideoPath: &path, Annotations: &annotation.Annotations{Label: &label, Segment: []int{0, 3}}},
		},
	}, root, annotation.BuildOptions{})
	require.NoError(t, err)

	out := RenderIndexSummary(ix)
	assert.Contains(t, out, "Samples:")
	assert.Contains(t, out, "0:run 1:walk")
}

func TestRenderExportSummary(t *testing.T) {
	out := RenderExportSummary("run-1", 12, []string{"out/shard_00000.tar"}, []string{"s3://b/shard_00000.tar"})
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "out/shard_00000.tar")
	assert.Contains(t, out, "s3://b/shard_00000.tar")
}
