// Package metrics provides Prometheus metrics for coordinate validation runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for outcome series.
const (
	MatchFound     = "matched"
	MatchNone      = "no_match"
	MatchAmbiguous = "ambiguous"

	ReportCreated = "created"
	ReportFailed  = "failed"

	PointBase   = "base"
	PointSurvey = "survey"
)

// Manager owns the run metrics and the registry they are registered on.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	stageErrors      *prometheus.CounterVec
	referenceRecords prometheus.Gauge
	matches          *prometheus.CounterVec
	pointDistance    *prometheus.GaugeVec
	mismatches       prometheus.Counter
	issueReports     *prometheus.CounterVec
	lastRunUnix      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a new metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "coordcheck",
		subsystem:        "run",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of each run stage in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_errors_total",
		Help:        "Errors raised by run stages, by stage and whether they aborted the run",
		ConstLabels: m.constLabels,
	}, []string{"stage", "fatal"})

	m.referenceRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reference_records",
		Help:        "Number of records in the loaded reference table",
		ConstLabels: m.constLabels,
	})

	m.matches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_total",
		Help:        "Reference lookups by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.pointDistance = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "point_distance",
		Help:        "Distance between extracted and reference points, in model units",
		ConstLabels: m.constLabels,
	}, []string{"point"})

	m.mismatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mismatches_total",
		Help:        "Runs whose coordinates exceeded the tolerance",
		ConstLabels: m.constLabels,
	})

	m.issueReports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "issue_reports_total",
		Help:        "Issue creation attempts by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_completed_unixtime",
		Help:        "Unix time the last run wrote its result",
		ConstLabels: m.constLabels,
	})
}

// ObserveStage records how long a stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordStageError counts a stage error.
func (m *Manager) RecordStageError(stage string, fatal bool) {
	m.stageErrors.WithLabelValues(stage, fmt.Sprint(fatal)).Inc()
}

// SetReferenceRecords records the size of the reference table.
func (m *Manager) SetReferenceRecords(n int) {
	m.referenceRecords.Set(float64(n))
}

// RecordMatch counts a lookup outcome (MatchFound, MatchNone, MatchAmbiguous).
func (m *Manager) RecordMatch(outcome string) {
	m.matches.WithLabelValues(outcome).Inc()
}

// SetPointDistance records the distance for PointBase or PointSurvey.
func (m *Manager) SetPointDistance(point string, distance float64) {
	m.pointDistance.WithLabelValues(point).Set(distance)
}

// RecordMismatch counts a run that exceeded the tolerance.
func (m *Manager) RecordMismatch() {
	m.mismatches.Inc()
}

// RecordIssueReport counts an issue creation attempt (ReportCreated, ReportFailed).
func (m *Manager) RecordIssueReport(outcome string) {
	m.issueReports.WithLabelValues(outcome).Inc()
}

// MarkCompleted stamps the time the run finished writing its result.
func (m *Manager) MarkCompleted(t time.Time) {
	m.lastRunUnix.Set(float64(t.Unix()))
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric to path in the text exposition format,
// for collection by a node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// Default returns the global metrics manager.
func Default() *Manager {
	return globalManager
}
