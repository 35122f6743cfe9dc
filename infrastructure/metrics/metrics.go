package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"log-analyzer/application"
)

const namespace = "log_analyzer"

// Collector records the outcome of report runs. Batch runs are short-lived,
// so the metrics are written to a node_exporter textfile instead of being
// scraped.
type Collector struct {
	registry *prometheus.Registry

	lines        *prometheus.GaugeVec
	errorRate    prometheus.Gauge
	paths        prometheus.Gauge
	reportedPath prometheus.Gauge
	state        *prometheus.GaugeVec
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	logDate      prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lines",
			Help:      "Lines read from the last processed log, by outcome",
		}, []string{"outcome"}),
		errorRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parse_error_rate",
			Help:      "Share of lines of the last processed log that failed to parse",
		}),
		paths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paths",
			Help:      "Distinct request paths in the last processed log",
		}),
		reportedPath: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reported_paths",
			Help:      "Request paths kept in the last report",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_state",
			Help:      "Terminal state of the last run (1 for the state reached)",
		}, []string{"state"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		logDate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_date_timestamp_seconds",
			Help:      "Date embedded in the name of the last selected log",
		}),
	}
	c.registry.MustRegister(
		c.lines, c.errorRate, c.paths, c.reportedPath,
		c.state, c.duration, c.lastSuccess, c.logDate,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveRun(result application.RunResult, err error) {
	for _, s := range []application.RunState{
		application.StateSucceeded, application.StateAborted, application.StateSkipped,
	} {
		c.state.WithLabelValues(s.String()).Set(0)
	}
	c.state.WithLabelValues("failed").Set(0)

	if err != nil {
		c.state.WithLabelValues("failed").Set(1)
	} else {
		c.state.WithLabelValues(result.State.String()).Set(1)
	}
	c.duration.Set(result.Elapsed.Seconds())

	if !result.Log.Date.IsZero() {
		c.logDate.Set(float64(result.Log.Date.Unix()))
	}
	if result.State == application.StateSkipped || err != nil {
		return
	}

	c.lines.WithLabelValues("parsed").Set(float64(result.ParsedLines()))
	c.lines.WithLabelValues("failed").Set(float64(result.FailedLines))
	c.errorRate.Set(result.ErrorRate())
	c.paths.Set(float64(result.Paths))
	c.reportedPath.Set(float64(len(result.Stats)))
	if result.State == application.StateSucceeded {
		c.lastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
