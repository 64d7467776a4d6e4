package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.SetInventory(10)
	m.ObserveExtraction("regex", "direct", true, 2*time.Second)
	m.ObserveExtraction("regex", "", false, time.Second)
	m.ObserveReconciliation("created", true)
	m.ObserveRun("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"hubcenter_scraper_inventory_sites 10",
		`hubcenter_scraper_extractions_total{source="direct",status="analyzed",strategy="regex"} 1`,
		`hubcenter_scraper_extractions_total{source="none",status="failed",strategy="regex"} 1`,
		`hubcenter_scraper_reconciliations_total{action="created",status="ok"} 1`,
		`hubcenter_scraper_runs_total{result="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %q in output:\n%s", want, body)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SetInventory(1)
	m.ObserveExtraction("regex", "direct", true, time.Second)
	m.ObserveReconciliation("updated", false)
	m.ObserveRun("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 from nil metrics, got %d", rec.Code)
	}
}
