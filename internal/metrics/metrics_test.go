package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNoop(t *testing.T) {
	t.Parallel()

	var m Noop
	m.ObserveConversion("docx", "success")
	m.ObserveStage("render", time.Millisecond)
	m.ObserveArtifact("docx", 10)
	m.ObserveRequest("POST", "/convert", 200, time.Millisecond)
}

func TestProm(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewProm(Namespace, reg)
	m.ObserveConversion("docx", "success")
	m.ObserveConversion("docx", "success")
	m.ObserveStage("render", 5*time.Millisecond)
	m.ObserveArtifact("docx", 4096)
	m.ObserveRequest("POST", "/convert", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.conversions.WithLabelValues("docx", "success")); got != 2 {
		t.Errorf("conversions = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	checks := []struct {
		name   string
		labels map[string]string
	}{
		{"md2docx_conversions_total", map[string]string{"format": "docx", "outcome": "success"}},
		{"md2docx_stage_duration_seconds", map[string]string{"stage": "render"}},
		{"md2docx_artifact_bytes", map[string]string{"format": "docx"}},
		{"md2docx_http_requests_total", map[string]string{"method": "POST", "route": "/convert", "status": "200"}},
		{"md2docx_http_request_duration_seconds", map[string]string{"method": "POST", "route": "/convert"}},
	}
	for _, c := range checks {
		if !hasMetric(families, c.name, c.labels) {
			t.Errorf("expected metric %s%v", c.name, c.labels)
		}
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewProm(Namespace, reg)
	h := Middleware(m, "/convert")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/convert", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/convert", "405"))
	if got != 1 {
		t.Errorf("requests{405} = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewProm(Namespace, reg)
	m.ObserveConversion("html", "success")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "md2docx_conversions_total") {
		t.Errorf("metrics output missing conversions counter")
	}
}

func hasMetric(families []*dto.MetricFamily, name string, labels map[string]string) bool {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) {
				return true
			}
		}
	}
	return false
}

func matchLabels(pairs []*dto.LabelPair, labels map[string]string) bool {
	found := 0
	for _, pair := range pairs {
		if val, ok := labels[pair.GetName()]; ok && pair.GetValue() == val {
			found++
		}
	}
	return found == len(labels)
}
