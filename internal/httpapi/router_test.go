package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter_BasicEndpoints(t *testing.T) {
	mux := NewMux()

	cases := []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.status {
			t.Fatalf("%s: status=%d, want=%d", c.path, rec.Code, c.status)
		}
	}
}

func TestRouter_Metrics(t *testing.T) {
	mux := NewMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "subweave_http_requests_total") {
		t.Fatalf("metrics body:\n%s", rec.Body.String())
	}
}
