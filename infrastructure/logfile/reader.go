package logfile

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"log-analyzer/domain"
)

// File is an opened log, decompressed on the fly.
type File struct {
	raw     *os.File
	counter *countingReader
	body    io.Reader
	closer  io.Closer
	size    int64
}

// Open opens path and, when its name says so, wraps it in a gzip or zstd
// decoder.
func Open(path string) (*File, error) {
	raw, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}

	info, err := raw.Stat()
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to stat log %s: %w", path, err)
	}

	f := &File{
		raw:     raw,
		counter: &countingReader{r: raw},
		size:    info.Size(),
	}

	switch Compression(path) {
	case "gzip":
		zr, err := gzip.NewReader(f.counter)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("failed to read gzip header of %s: %w", path, err)
		}
		f.body, f.closer = zr, zr
	case "zstd":
		zr, err := zstd.NewReader(f.counter)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("failed to init zstd decoder for %s: %w", path, err)
		}
		rc := zr.IOReadCloser()
		f.body, f.closer = rc, rc
	default:
		f.body = f.counter
	}
	return f, nil
}

func (f *File) Read(p []byte) (int, error) {
	return f.body.Read(p)
}

// Size is the on-disk size of the file in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Offset is the number of on-disk bytes consumed so far.
func (f *File) Offset() int64 {
	return f.counter.n.Load()
}

func (f *File) Close() error {
	if f.closer != nil {
		if err := f.closer.Close(); err != nil {
			f.raw.Close()
			return err
		}
	}
	return f.raw.Close()
}

type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Directory is a log source backed by a local directory.
type Directory struct {
	Path string
}

func NewDirectory(path string) *Directory {
	return &Directory{Path: path}
}

func (d *Directory) SelectMostRecent() (domain.LogFileDescriptor, bool, error) {
	return SelectMostRecent(d.Path)
}

func (d *Directory) Open(desc domain.LogFileDescriptor) (domain.LogReader, error) {
	f, err := Open(desc.Path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
