package domain

import (
	"context"
	"io"
	"time"
)

// StatsRepository persists the ranked statistics of a report.
type StatsRepository interface {
	ReportExists(ctx context.Context, date time.Time) (bool, error)
	SaveStats(ctx context.Context, date time.Time, stats []PathStats) error
}

// LogReader streams the decoded contents of one log file.
type LogReader interface {
	io.ReadCloser
	// Size and Offset are in on-disk bytes, for progress reporting.
	Size() int64
	Offset() int64
}

// LogSource discovers and opens access logs.
type LogSource interface {
	SelectMostRecent() (LogFileDescriptor, bool, error)
	Open(desc LogFileDescriptor) (LogReader, error)
}
