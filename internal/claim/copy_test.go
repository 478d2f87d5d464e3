package claim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

func writeSource(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o640))
	old := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func TestPrepareAndCommit(t *testing.T) {
	src := writeSource(t, "IMG_0001.JPG", []byte("fake-jpeg-bytes"))

	p, err := Prepare(Selection{Device: "电池", File: src, Quantity: "5"}, day)
	require.NoError(t, err)
	assert.Equal(t, "20240101_电池_5.jpg", p.DestName)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "20240101_电池_5.jpg"), p.Dest)
	assert.Equal(t, "电池_5", p.Label)
	assert.Equal(t, 5, p.Quantity)
	assert.False(t, p.Exists)

	require.NoError(t, Commit(p, false))

	got, err := os.ReadFile(p.Dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg-bytes"), got)

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(p.Dest)
	require.NoError(t, err)
	assert.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()), "mtime should be preserved")

	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg-bytes"), orig, "source must be untouched")

	entries, err := os.ReadDir(filepath.Dir(src))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestPrepare_ValidationHasNoSideEffects(t *testing.T) {
	src := writeSource(t, "a.jpg", []byte("x"))

	for _, q := range []string{"0", "abc"} {
		_, err := Prepare(Selection{Device: "电池", File: src, Quantity: q}, day)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	entries, err := os.ReadDir(filepath.Dir(src))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommit_DeclinedOverwriteLeavesFileAlone(t *testing.T) {
	src := writeSource(t, "a.jpg", []byte("new"))
	dest := filepath.Join(filepath.Dir(src), "20240101_电池_5.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p, err := Prepare(Selection{Device: "电池", File: src, Quantity: "5"}, day)
	require.NoError(t, err)
	assert.True(t, p.Exists)

	err = Commit(p, false)
	assert.ErrorIs(t, err, ErrDestinationExists)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)
}

func TestCommit_Overwrite(t *testing.T) {
	src := writeSource(t, "a.jpg", []byte("new"))
	dest := filepath.Join(filepath.Dir(src), "20240101_电池_旧_5.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	p, err := Prepare(Selection{Device: "电池", Remark: "旧", File: src, Quantity: "5"}, day)
	require.NoError(t, err)
	require.True(t, p.Exists)

	require.NoError(t, Commit(p, true))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestCommit_MissingSourceIsIOError(t *testing.T) {
	dir := t.TempDir()
	p, err := Prepare(Selection{Device: "电池", File: filepath.Join(dir, "gone.jpg"), Quantity: "1"}, day)
	require.NoError(t, err)

	err = Commit(p, false)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "copy", ioErr.Op)
	_, statErr := os.Stat(p.Dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCaptureTime_NoExif(t *testing.T) {
	src := writeSource(t, "plain.jpg", []byte("not an image"))
	_, err := CaptureTime(src)
	assert.Error(t, err)
}

func TestPrepare_NormalizesLeadingZeros(t *testing.T) {
	src := writeSource(t, "a.jpg", []byte("x"))
	p, err := Prepare(Selection{Device: "模块", File: src, Quantity: "007"}, day)
	require.NoError(t, err)
	assert.Equal(t, "20240101_模块_7.jpg", p.DestName)
	assert.Equal(t, 7, p.Quantity)
}
