package application

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"log-analyzer/domain"
)

const (
	DefaultReportSize     = 1000
	DefaultErrorThreshold = 0.7

	maxLineSize    = 1024 * 1024
	progressStride = 1000
)

// Renderer writes the report for one log date.
type Renderer interface {
	Exists(date time.Time) (bool, error)
	Render(ctx context.Context, date time.Time, stats []domain.PathStats) (string, error)
}

type UI interface {
	Init(total int)
	Update(current int)
	RenderReport(result RunResult)
	Close()
}

// Recorder receives the outcome of every run.
type Recorder interface {
	ObserveRun(result RunResult, err error)
}

type Options struct {
	ReportSize     int
	ErrorThreshold float64
	// Force regenerates a report that already exists for the log date.
	Force bool
}

type ReportService struct {
	source   domain.LogSource
	parser   *domain.Parser
	renderer Renderer
	repo     domain.StatsRepository
	ui       UI
	recorder Recorder
	log      *zap.SugaredLogger
	opts     Options
}

type Option func(*ReportService)

// WithRepository stores the ranked stats after the report is written.
func WithRepository(repo domain.StatsRepository) Option {
	return func(s *ReportService) { s.repo = repo }
}

func WithUI(ui UI) Option {
	return func(s *ReportService) { s.ui = ui }
}

func WithRecorder(r Recorder) Option {
	return func(s *ReportService) { s.recorder = r }
}

func NewReportService(source domain.LogSource, renderer Renderer, log *zap.SugaredLogger, opts Options, extra ...Option) *ReportService {
	s := &ReportService{
		source:   source,
		parser:   domain.NewParser(),
		renderer: renderer,
		log:      log,
		opts:     opts,
	}
	for _, o := range extra {
		o(s)
	}
	return s
}

// Run selects the most recent log, parses it, and writes the report. Bad
// lines are counted, not fatal; an error rate above the threshold aborts
// the run without a report. Only structural failures are returned as errors.
func (s *ReportService) Run(ctx context.Context) (RunResult, error) {
	start := time.Now()
	result, err := s.run(ctx)
	result.Elapsed = time.Since(start)
	if s.recorder != nil {
		s.recorder.ObserveRun(result, err)
	}
	return result, err
}

func (s *ReportService) run(ctx context.Context) (RunResult, error) {
	result := RunResult{State: StateSelecting}

	desc, ok, err := s.source.SelectMostRecent()
	if err != nil {
		return result, fmt.Errorf("failed to select log file: %w", err)
	}
	if !ok {
		s.log.Infof("No log files to analyze. Exiting.")
		result.State, result.SkipReason = StateSkipped, SkipNoLogFile
		return result, nil
	}
	result.Log = desc
	s.log.Infof("Selected log %s (%s)", desc.Path, desc.Date.Format("2006-01-02"))

	skip, err := s.reportExists(ctx, desc.Date)
	if err != nil {
		return result, err
	}
	if skip {
		if !s.opts.Force {
			s.log.Warnf("Report for %s already exists, skipping", desc.Date.Format("2006-01-02"))
			result.State, result.SkipReason = StateSkipped, SkipReportExists
			return result, nil
		}
		s.log.Warnf("Report for %s already exists, overwriting", desc.Date.Format("2006-01-02"))
	}

	result.State = StateProcessing
	acc, err := s.process(ctx, desc, &result)
	if err != nil {
		return result, err
	}

	rate := result.ErrorRate()
	switch {
	case rate > s.opts.ErrorThreshold:
		s.log.Errorf("Parse error rate %.4f exceeds threshold %.4f (%d of %d lines), aborting",
			rate, s.opts.ErrorThreshold, result.FailedLines, result.TotalLines)
		result.State = StateAborted
		return result, nil
	case rate > 0:
		s.log.Warnf("Parse error rate %.4f (%d of %d lines failed)", rate, result.FailedLines, result.TotalLines)
	}

	stats := acc.Stats()
	result.Paths = len(stats)
	result.Stats = domain.TopN(stats, s.opts.ReportSize)
	s.log.Debugf("Aggregated %d records into %d paths, keeping %d", acc.Len(), result.Paths, len(result.Stats))

	path, err := s.renderer.Render(ctx, desc.Date, result.Stats)
	if err != nil {
		return result, fmt.Errorf("failed to render report: %w", err)
	}
	result.ReportPath = path

	if s.repo != nil {
		if err := s.repo.SaveStats(ctx, desc.Date, result.Stats); err != nil {
			return result, fmt.Errorf("failed to save stats: %w", err)
		}
	}

	result.State = StateSucceeded
	if s.ui != nil {
		s.ui.RenderReport(result)
	}
	s.log.Infof("Report written to %s", path)
	return result, nil
}

func (s *ReportService) reportExists(ctx context.Context, date time.Time) (bool, error) {
	exists, err := s.renderer.Exists(date)
	if err != nil {
		return false, fmt.Errorf("failed to check existing report: %w", err)
	}
	if exists || s.repo == nil {
		return exists, nil
	}
	exists, err = s.repo.ReportExists(ctx, date)
	if err != nil {
		return false, fmt.Errorf("failed to check stored stats: %w", err)
	}
	return exists, nil
}

// process reads desc line by line into a fresh accumulator, counting lines
// in result.
func (s *ReportService) process(ctx context.Context, desc domain.LogFileDescriptor, result *RunResult) (*domain.Accumulator, error) {
	r, err := s.source.Open(desc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if s.ui != nil {
		s.ui.Init(int(r.Size()))
		defer s.ui.Close()
	}

	acc := domain.NewAccumulator()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		result.TotalLines++
		if result.TotalLines%progressStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if s.ui != nil {
				s.ui.Update(int(r.Offset()))
			}
		}

		rec, err := s.parser.Parse(scanner.Text())
		if err != nil {
			result.FailedLines++
			s.log.Debugf("Line %d: %v", result.TotalLines, err)
			continue
		}
		acc.Add(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s at line %d: %w", desc.Path, result.TotalLines+1, err)
	}
	if s.ui != nil {
		s.ui.Update(int(r.Size()))
	}

	s.log.Infof("Processed %d lines, %d parsed, %d failed", result.TotalLines, result.ParsedLines(), result.FailedLines)
	return acc, nil
}
