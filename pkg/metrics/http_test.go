package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/photos", 200, 120*time.Millisecond)
	m.Observe("GET", "/api/photos", 200, 80*time.Millisecond)
	m.Observe("POST", "", 401, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	labels := map[string]string{"method": "GET", "route": "/api/photos", "status": "200"}
	if got, err := fetchCounterValue(mfs, "keepsake_http_requests_total", labels); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected requests=2, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "keepsake_http_request_duration_seconds", labels); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got < 0.19 || got > 0.21 {
		t.Fatalf("expected duration sum ~0.2, got %f", got)
	}

	unknown := map[string]string{"method": "POST", "route": "unknown", "status": "401"}
	if got, err := fetchCounterValue(mfs, "keepsake_http_requests_total", unknown); err != nil || got != 1 {
		t.Fatalf("expected unknown route counted once, got %f (%v)", got, err)
	}
}

func TestBlobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBlobMetrics(reg)
	m.ObserveBlobOperation("put", "ok")
	m.ObserveBlobOperation("get", "not_found")
	m.ObserveBlobOperation("get", "not_found")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "keepsake_blob_operations_total", map[string]string{"op": "get", "outcome": "not_found"})
	if err != nil {
		t.Fatalf("fetch blob ops: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
	NewBlobMetrics(nil).ObserveBlobOperation("put", "ok")
	var m *HTTPMetrics
	m.Observe("GET", "/", 200, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
