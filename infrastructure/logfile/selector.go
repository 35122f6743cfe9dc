package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log-analyzer/domain"
)

const dateLayout = "20060102"

// Suffixes accepted after the date token, mapped to their compression codec.
var suffixes = map[string]string{
	"":         "",
	".log":     "",
	".txt":     "",
	".gz":      "gzip",
	".log.gz":  "gzip",
	".txt.gz":  "gzip",
	".zst":     "zstd",
	".log.zst": "zstd",
}

// SelectMostRecent scans dir (not recursively) for files named
// <prefix>-<YYYYMMDD><suffix> and returns the one with the latest date.
// ok is false when no file qualifies. A missing directory is an error.
func SelectMostRecent(dir string) (desc domain.LogFileDescriptor, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return desc, false, fmt.Errorf("%w: %s", domain.ErrLogDirNotFound, dir)
		}
		return desc, false, fmt.Errorf("failed to read log directory %s: %w", dir, err)
	}

	var bestName string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		date, match := ParseName(name)
		if !match {
			continue
		}
		if !ok || date.After(desc.Date) || (date.Equal(desc.Date) && name > bestName) {
			desc = domain.LogFileDescriptor{Path: filepath.Join(dir, name), Date: date}
			bestName = name
			ok = true
		}
	}
	return desc, ok, nil
}

// ParseName extracts the date from a log file name. It reports false for
// names without a well-formed date or with an unknown suffix.
func ParseName(name string) (time.Time, bool) {
	dash := strings.LastIndexByte(name, '-')
	if dash < 0 {
		return time.Time{}, false
	}
	rest := name[dash+1:]

	token, suffix := rest, ""
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		token, suffix = rest[:dot], rest[dot:]
	}
	if _, known := suffixes[suffix]; !known {
		return time.Time{}, false
	}
	if len(token) != len(dateLayout) {
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, token)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Compression returns "gzip", "zstd" or "" for the codec implied by path.
func Compression(path string) string {
	name := filepath.Base(path)
	dash := strings.LastIndexByte(name, '-')
	rest := name[dash+1:]
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		return suffixes[rest[dot:]]
	}
	return ""
}
