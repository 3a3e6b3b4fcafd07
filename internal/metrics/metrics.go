// Package metrics exposes Prometheus collectors for imports and tier changes.
//
// All methods are safe on a nil *Metrics, so callers that run without
// metrics (tests, the CLI) pass nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vendorhub"

// Metrics holds the service collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	imports        *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importRejected *prometheus.CounterVec
	importDuration prometheus.Histogram
	activeImports  prometheus.Gauge
	tierChanges    *prometheus.CounterVec
	tierRequests   *prometheus.CounterVec
	auditArchive   *prometheus.CounterVec
}

// New creates collectors on a fresh registry. Go runtime and process
// collectors are included when runtime is true.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Spreadsheet imports by outcome.",
		}, []string{"status", "dry_run"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported spreadsheet rows by result.",
		}, []string{"result"}),
		importRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_rejected_total",
			Help:      "Imports rejected before execution.",
		}, []string{"reason"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time to parse, validate and apply one spreadsheet.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		activeImports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imports_active",
			Help:      "Imports currently holding a limiter slot.",
		}),
		tierChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_changes_total",
			Help:      "Applied vendor tier changes.",
		}, []string{"from", "to", "source"}),
		tierRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_requests_total",
			Help:      "Tier request lifecycle events.",
		}, []string{"action"}),
		auditArchive: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_archive_rows_total",
			Help:      "Audit log rows moved to the archive or purged from it.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.imports,
		m.importRows,
		m.importRejected,
		m.importDuration,
		m.activeImports,
		m.tierChanges,
		m.tierRequests,
		m.auditArchive,
	)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveImport records a finished import.
func (m *Metrics) ObserveImport(status string, dryRun bool, okRows, failedRows int, d time.Duration) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(status, strconv.FormatBool(dryRun)).Inc()
	m.importRows.WithLabelValues("success").Add(float64(okRows))
	m.importRows.WithLabelValues("failed").Add(float64(failedRows))
	m.importDuration.Observe(d.Seconds())
}

// ImportRejected counts an import refused before execution.
func (m *Metrics) ImportRejected(reason string) {
	if m == nil {
		return
	}
	m.importRejected.WithLabelValues(reason).Inc()
}

// ImportStarted and ImportFinished track imports in flight.
func (m *Metrics) ImportStarted() {
	if m == nil {
		return
	}
	m.activeImports.Inc()
}

func (m *Metrics) ImportFinished() {
	if m == nil {
		return
	}
	m.activeImports.Dec()
}

// TierChanged counts an applied tier change. source is "request" or "admin".
func (m *Metrics) TierChanged(from, to, source string) {
	if m == nil {
		return
	}
	m.tierChanges.WithLabelValues(from, to, source).Inc()
}

// TierRequest counts a tier request lifecycle event.
func (m *Metrics) TierRequest(action string) {
	if m == nil {
		return
	}
	m.tierRequests.WithLabelValues(action).Inc()
}

// AuditArchived counts rows moved by one archive run.
func (m *Metrics) AuditArchived(archived, purged int64) {
	if m == nil {
		return
	}
	m.auditArchive.WithLabelValues("archived").Add(float64(archived))
	m.auditArchive.WithLabelValues("purged").Add(float64(purged))
}
