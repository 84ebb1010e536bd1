// Package metrics provides Prometheus metrics for the labsite generator.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a generator run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Input metrics
	recordsLoaded  *prometheus.CounterVec
	recordsDropped *prometheus.CounterVec
	datesUnparsed  prometheus.Counter

	// Classification metrics
	membersClassified *prometheus.GaugeVec
	unrankedRoles     prometheus.Gauge

	// Output metrics
	pagesRendered *prometheus.CounterVec
	brokenLinks   prometheus.Gauge

	// Pipeline metrics
	stageDuration  *prometheus.HistogramVec
	stageFailures  *prometheus.CounterVec
	lastBuildUnix  prometheus.Gauge
	rebuildsByKind *prometheus.CounterVec

	// Preview HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Default metric name prefixes.
const (
	DefaultNamespace = "labsite"
	DefaultSubsystem = "generator"
)

// Configure rebuilds the global manager from opts on a fresh registry. It
// must run before anything records or serves metrics.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        DefaultNamespace,
		subsystem:        DefaultSubsystem,
		histogramBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.recordsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_loaded_total",
		Help:        "Records read from the data tree by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.recordsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_dropped_total",
		Help:        "Records skipped during loading or classification by kind and reason",
		ConstLabels: m.constLabels,
	}, []string{"kind", "reason"})

	m.datesUnparsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dates_unparsed_total",
		Help:        "Date fields that failed to parse and were treated as unknown",
		ConstLabels: m.constLabels,
	})

	m.membersClassified = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "members",
		Help:        "Members by classification outcome in the last run",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.unrankedRoles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unranked_roles",
		Help:        "Distinct current-member roles missing from the role hierarchy",
		ConstLabels: m.constLabels,
	})

	m.pagesRendered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pages_rendered_total",
		Help:        "HTML pages written by page kind",
		ConstLabels: m.constLabels,
	}, []string{"page"})

	m.brokenLinks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "broken_links",
		Help:        "Internal links pointing at missing files in the last check",
		ConstLabels: m.constLabels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of each pipeline stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.stageFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_failures_total",
		Help:        "Pipeline stages that aborted the run",
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.lastBuildUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_build_timestamp_seconds",
		Help:        "Unix time of the last successful build",
		ConstLabels: m.constLabels,
	})

	m.rebuildsByKind = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "preview_rebuilds_total",
		Help:        "Rebuilds triggered by the preview watcher by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Preview server requests by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Preview server request duration in milliseconds",
		Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordLoaded adds n loaded records of the given kind.
func RecordLoaded(kind string, n int) {
	globalManager.recordsLoaded.WithLabelValues(kind).Add(float64(n))
}

// RecordDropped counts a record skipped for reason.
func RecordDropped(kind, reason string) {
	globalManager.recordsDropped.WithLabelValues(kind, reason).Inc()
}

// RecordDateUnparsed counts a date field that could not be parsed.
func RecordDateUnparsed() {
	globalManager.datesUnparsed.Inc()
}

// UpdateMembers sets the member counts for the last classification.
func UpdateMembers(current, alumni, undecided int) {
	globalManager.membersClassified.WithLabelValues("current").Set(float64(current))
	globalManager.membersClassified.WithLabelValues("alumni").Set(float64(alumni))
	globalManager.membersClassified.WithLabelValues("undecided").Set(float64(undecided))
}

// UpdateUnrankedRoles sets the number of roles missing from the hierarchy.
func UpdateUnrankedRoles(count int) {
	globalManager.unrankedRoles.Set(float64(count))
}

// RecordPageRendered counts one written page of the given kind.
func RecordPageRendered(page string) {
	globalManager.pagesRendered.WithLabelValues(page).Inc()
}

// UpdateBrokenLinks sets the broken link count from the last check.
func UpdateBrokenLinks(count int) {
	globalManager.brokenLinks.Set(float64(count))
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordStageFailure counts a stage that aborted the run.
func RecordStageFailure(stage string) {
	globalManager.stageFailures.WithLabelValues(stage).Inc()
}

// MarkBuildFinished stamps the last successful build time.
func MarkBuildFinished(unix int64) {
	globalManager.lastBuildUnix.Set(float64(unix))
}

// RecordRebuild counts a watcher-triggered rebuild ("ok" or "failed").
func RecordRebuild(result string) {
	globalManager.rebuildsByKind.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a preview server request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records preview server request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry holding every labsite metric.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in Prometheus text format, for node_exporter's
// textfile collector or CI artifacts.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
