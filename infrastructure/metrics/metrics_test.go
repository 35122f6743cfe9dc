package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log-analyzer/application"
	"log-analyzer/domain"
)

func TestCollector_ObserveRun(t *testing.T) {
	c := NewCollector()

	c.ObserveRun(application.RunResult{
		State:       application.StateSucceeded,
		Log:         domain.LogFileDescriptor{Date: time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC)},
		TotalLines:  1000,
		FailedLines: 200,
		Paths:       12,
		Stats:       make([]domain.PathStats, 10),
		Elapsed:     1500 * time.Millisecond,
	}, nil)

	assert.Equal(t, 800.0, testutil.ToFloat64(c.lines.WithLabelValues("parsed")))
	assert.Equal(t, 200.0, testutil.ToFloat64(c.lines.WithLabelValues("failed")))
	assert.InDelta(t, 0.2, testutil.ToFloat64(c.errorRate), 1e-9)
	assert.Equal(t, 12.0, testutil.ToFloat64(c.paths))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.reportedPath))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.state.WithLabelValues("succeeded")))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.duration))
	assert.Positive(t, testutil.ToFloat64(c.lastSuccess))

	c.ObserveRun(application.RunResult{State: application.StateAborted, TotalLines: 10, FailedLines: 9}, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.state.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.state.WithLabelValues("aborted")))

	c.ObserveRun(application.RunResult{}, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.state.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.state.WithLabelValues("aborted")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.ObserveRun(application.RunResult{State: application.StateSkipped}, nil)

	path := filepath.Join(t.TempDir(), "log_analyzer.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `log_analyzer_run_state{state="skipped"} 1`)
}
