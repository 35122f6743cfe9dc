package logfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log-analyzer/domain"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644))
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		date string
	}{
		{"app-20230101.log", true, "2023-01-01"},
		{"app-20230102.log.gz", true, "2023-01-02"},
		{"nginx-access-ui.log-20170630.gz", true, "2017-06-30"},
		{"nginx-access-ui.log-20170630", true, "2017-06-30"},
		{"nginx-access.log-20190102.txt", true, "2019-01-02"},
		{"app-20230103.log.zst", true, "2023-01-03"},
		{"log-29990101.log.bz", false, ""},
		{"app-20230101.log.bz2", false, ""},
		{"app-2023011.log", false, ""},
		{"app-202301011.log", false, ""},
		{"app-20231301.log", false, ""},
		{"app-2023ab01.log", false, ""},
		{"app20230101.log", false, ""},
		{"README", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := ParseName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.date, date.Format("2006-01-02"))
			}
		})
	}
}

func TestSelectMostRecent(t *testing.T) {
	t.Run("Picks latest date across encodings", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "app-20230101.log")
		touch(t, dir, "app-20230102.log.gz")

		desc, ok, err := SelectMostRecent(dir)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "app-20230102.log.gz"), desc.Path)
		assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), desc.Date)
	})

	t.Run("Ignores unknown suffixes and directories", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "nginx-access.log-20190102.gz")
		touch(t, dir, "log-29990101.log.bz")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "old-29990101.log"), 0o755))

		desc, ok, err := SelectMostRecent(dir)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "nginx-access.log-20190102.gz", filepath.Base(desc.Path))
	})

	t.Run("No candidates", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "notes.txt")

		_, ok, err := SelectMostRecent(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, ok, err := SelectMostRecent(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, domain.ErrLogDirNotFound))
	})

	t.Run("Same date is deterministic", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a-20230101.log")
		touch(t, dir, "b-20230101.log.gz")

		desc, ok, err := SelectMostRecent(dir)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b-20230101.log.gz", filepath.Base(desc.Path))
	})
}

func TestOpen(t *testing.T) {
	const content = "line one\nline two\n"
	dir := t.TempDir()

	plain := filepath.Join(dir, "app-20230101.log")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0o644))

	gz := filepath.Join(dir, "app-20230102.log.gz")
	gf, err := os.Create(gz)
	require.NoError(t, err)
	gw := gzip.NewWriter(gf)
	_, err = gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, gf.Close())

	zst := filepath.Join(dir, "app-20230103.log.zst")
	zf, err := os.Create(zst)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(zf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	for _, path := range []string{plain, gz, zst} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()

			data, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
			assert.Positive(t, f.Offset())
			assert.LessOrEqual(t, f.Offset(), f.Size())
		})
	}
}

func TestOpen_BadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app-20230101.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-20230101.log"), []byte("hello\n"), 0o644))

	var src domain.LogSource = NewDirectory(dir)
	desc, ok, err := src.SelectMostRecent()
	require.NoError(t, err)
	require.True(t, ok)

	r, err := src.Open(desc)
	require.NoError(t, err)
	defer r.Close()
	assert.EqualValues(t, 6, r.Size())
}
