package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/media/")
	require.NoError(t, err)

	url, err := l.Put(context.Background(), "videos/a.mp4", strings.NewReader("data"), 4, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "/media/videos/a.mp4", url)

	b, err := os.ReadFile(filepath.Join(dir, "videos", "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	require.NoError(t, l.Delete(context.Background(), "videos/a.mp4"))
	_, err = os.Stat(filepath.Join(dir, "videos", "a.mp4"))
	assert.True(t, os.IsNotExist(err))

	// 删除不存在的对象不是错误
	assert.NoError(t, l.Delete(context.Background(), "videos/a.mp4"))
}

func TestLocalRejectsEscapingKey(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = l.Put(context.Background(), "../evil.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocalPutRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/media")
	require.NoError(t, err)

	r := io.MultiReader(strings.NewReader("half"), failingReader{})
	_, err = l.Put(context.Background(), "videos/broken.mp4", r, 100, "video/mp4")
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "videos", "broken.mp4"))
	assert.True(t, os.IsNotExist(err))
}
