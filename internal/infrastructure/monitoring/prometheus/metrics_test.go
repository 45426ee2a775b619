package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/claimtrack/internal/application/recordsync"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
)

func TestAppMetrics_RecordClassification(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordClassification(claim.StateAwaitingResponse, narrative.ViewerClaimant, 2*time.Microsecond)
	m.RecordClassification(claim.StateAwaitingResponse, narrative.ViewerClaimant, 3*time.Microsecond)
	m.RecordClassificationFailure("NAR_001")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_dashboard_classifications_total{state="AWAITING_RESPONSE",viewer="CLAIMANT"} 2`)
	assert.Contains(t, out, `test_unit_dashboard_classification_failures_total{code="NAR_001"} 1`)
	assert.Contains(t, out, `test_unit_dashboard_classification_duration_seconds_count{viewer="CLAIMANT"} 2`)
}

func TestAppMetrics_RecordHTTPRequest(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordHTTPRequest("GET", "/api/v1/claims/{externalId}/dashboard", 404, 10*time.Millisecond)
	m.IncActiveRequests()
	m.IncActiveRequests()
	m.DecActiveRequests()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_active_requests 1`)
	assert.Contains(t, out, `test_unit_http_requests_total{method="GET",route="/api/v1/claims/{externalId}/dashboard",status_code="404"} 1`)
}

func TestAppMetrics_CacheAndHealth(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordCacheAccess(true)
	m.RecordCacheAccess(false)
	m.RecordCacheAccess(false)
	m.SetHealth("postgres", true)
	m.SetHealth("redis", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_claim_cache_access_total{result="hit"} 1`)
	assert.Contains(t, out, `test_unit_claim_cache_access_total{result="miss"} 2`)
	assert.Contains(t, out, `test_unit_health_check_status{component="postgres"} 1`)
	assert.Contains(t, out, `test_unit_health_check_status{component="redis"} 0`)
}

func TestAppMetrics_RecordSync(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordSync(recordsync.OutcomeApplied)
	m.RecordSync(recordsync.OutcomeApplied)
	m.RecordSync(recordsync.OutcomeRejected)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_claim_record_sync_total{outcome="applied"} 2`)
	assert.Contains(t, out, `test_unit_claim_record_sync_total{outcome="rejected"} 1`)
}
