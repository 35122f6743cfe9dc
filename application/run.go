package application

import (
	"time"

	"log-analyzer/domain"
)

// RunState is the stage of a report run. Succeeded, Aborted and Skipped are
// terminal.
type RunState int

const (
	StateSelecting RunState = iota
	StateProcessing
	StateSucceeded
	StateAborted
	StateSkipped
)

func (s RunState) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateAborted:
		return "aborted"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

const (
	SkipNoLogFile    = "no log file"
	SkipReportExists = "report exists"
)

// RunResult summarizes one run of the report pipeline.
type RunResult struct {
	State      RunState
	SkipReason string
	Log        domain.LogFileDescriptor
	ReportPath string

	TotalLines  int
	FailedLines int
	Paths       int
	Stats       []domain.PathStats
	Elapsed     time.Duration
}

// ParsedLines is the number of lines that produced a record.
func (r RunResult) ParsedLines() int {
	return r.TotalLines - r.FailedLines
}

// ErrorRate is the share of lines that failed to parse, zero for an empty log.
func (r RunResult) ErrorRate() float64 {
	if r.TotalLines == 0 {
		return 0
	}
	return float64(r.FailedLines) / float64(r.TotalLines)
}
