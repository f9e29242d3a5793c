package medialib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("clip.mp4"))
	assert.True(t, IsVideo("CLIP.MP4"))
	assert.True(t, IsVideo("loops/ambient.mpeg"))
	assert.False(t, IsVideo("cover.jpg"))
	assert.False(t, IsVideo("notes.txt"))
	assert.False(t, IsVideo("mp4"))
}

func TestLocalVideosFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.mkv", "skip.txt", "c.partial"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755))

	videos, err := LocalVideos(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.mkv"),
		filepath.Join(dir, "b.mp4"),
	}, videos)
}

func TestLocalVideosMissingDir(t *testing.T) {
	_, err := LocalVideos(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFromEnvUnconfigured(t *testing.T) {
	t.Setenv("REELPLAY_S3_BUCKET", "")

	lib, err := FromEnv()
	require.NoError(t, err)
	assert.Nil(t, lib, "no bucket means no library")
}

func TestFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("REELPLAY_S3_BUCKET", "videos")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	_, err := FromEnv()
	assert.Error(t, err)
}
