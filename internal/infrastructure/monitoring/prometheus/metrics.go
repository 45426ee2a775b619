package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/application/recordsync"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
)

// AppMetrics holds every metric family claimtrack exports.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	ClassificationsTotal        CounterVec
	ClassificationFailuresTotal CounterVec
	ClassificationDuration      HistogramVec

	CacheAccessTotal CounterVec

	RecordSyncTotal CounterVec

	HealthCheckStatus GaugeVec
}

var (
	_ dashboard.MetricsRecorder  = (*AppMetrics)(nil)
	_ recordsync.MetricsRecorder = (*AppMetrics)(nil)
)

var (
	DefaultHTTPDurationBuckets           = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultClassificationDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01}
)

func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests"),

		ClassificationsTotal:        collector.RegisterCounter("dashboard_classifications_total", "Dashboards presented by resulting state", "state", "viewer"),
		ClassificationFailuresTotal: collector.RegisterCounter("dashboard_classification_failures_total", "Dashboard presentations that failed, by error code", "code"),
		ClassificationDuration:      collector.RegisterHistogram("dashboard_classification_duration_seconds", "Time to classify a record and select its narrative", DefaultClassificationDurationBuckets, "viewer"),

		CacheAccessTotal: collector.RegisterCounter("claim_cache_access_total", "Claim record cache lookups", "result"),

		RecordSyncTotal: collector.RegisterCounter("claim_record_sync_total", "Claim record updates received from the claim store, by outcome", "outcome"),

		HealthCheckStatus: collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component"),
	}
}

func (m *AppMetrics) RecordClassification(state claim.State, viewer narrative.Viewer, d time.Duration) {
	m.ClassificationsTotal.WithLabelValues(string(state), string(viewer)).Inc()
	m.ClassificationDuration.WithLabelValues(string(viewer)).Observe(d.Seconds())
}

func (m *AppMetrics) RecordClassificationFailure(code string) {
	m.ClassificationFailuresTotal.WithLabelValues(code).Inc()
}

func (m *AppMetrics) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *AppMetrics) IncActiveRequests() { m.HTTPActiveRequests.WithLabelValues().Inc() }
func (m *AppMetrics) DecActiveRequests() { m.HTTPActiveRequests.WithLabelValues().Dec() }

// RecordCacheAccess counts a claim cache lookup as a hit or a miss.
func (m *AppMetrics) RecordCacheAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheAccessTotal.WithLabelValues(result).Inc()
}

func (m *AppMetrics) RecordSync(outcome string) {
	m.RecordSyncTotal.WithLabelValues(outcome).Inc()
}

func (m *AppMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
