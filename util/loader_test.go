package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/images"
)

func TestListDirectoryImageFilesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.png", "frame-2.png", "frame-1.bmp", "notes.txt", "cover.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame-0.png"), 0o755))

	files, err := ListDirectoryImageFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"frame-1.bmp", "frame-2.png", "frame-10.png", "cover.png"}, names)
	assert.Equal(t, images.FormatBMP, files[0].Format)
	assert.Equal(t, -1, files[3].Frame)
}

func TestLoadDirectoryFrames(t *testing.T) {
	dir := t.TempDir()
	for i, v := range []int32{10, 20, 30} {
		g, err := grid.Fill(v, 4, 5)
		require.NoError(t, err)
		require.NoError(t, images.Save(filepath.Join(dir, "frame-"+string(rune('0'+i))+".png"), g))
	}

	frames, err := LoadDirectoryFrames(dir, 1)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, int32(10), frames[0].At(0, 0, 0))
	assert.Equal(t, int32(30), frames[2].At(3, 4, 0))
}

func TestLoadDirectoryFramesErrors(t *testing.T) {
	_, err := LoadDirectoryFrames(t.TempDir(), 1)
	assert.True(t, errors.Is(err, ErrNoImages))

	_, err = LoadDirectoryFrames(filepath.Join(t.TempDir(), "missing"), 1)
	assert.Error(t, err)
}
