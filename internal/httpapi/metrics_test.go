package httpapi

import (
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	metricsIncRequest("GET /sub", 200)
	metricsIncRequest("GET /sub", 200)
	metricsIncRequest("GET /sub", 422)
	metricsIncAppError("convert", "NO_VALID_NODES")

	total, reqs, errs := metricsSnapshot()
	if total < 3 {
		t.Fatalf("total=%d, want>=3", total)
	}

	var ok200, ok422 bool
	for _, m := range reqs {
		if m.Pattern == "GET /sub" && m.Status == 200 && m.N >= 2 {
			ok200 = true
		}
		if m.Pattern == "GET /sub" && m.Status == 422 && m.N >= 1 {
			ok422 = true
		}
	}
	if !ok200 || !ok422 {
		t.Fatalf("request counters missing: %+v", reqs)
	}

	var okErr bool
	for _, m := range errs {
		if m.Stage == "convert" && m.Code == "NO_VALID_NODES" && m.N >= 1 {
			okErr = true
		}
	}
	if !okErr {
		t.Fatalf("error counters missing: %+v", errs)
	}
}

func TestPromLabelEscape(t *testing.T) {
	if got := promLabelEscape(`a"b\c` + "\n"); got != `a\"b\\c\n` {
		t.Fatalf("got=%q", got)
	}
}
