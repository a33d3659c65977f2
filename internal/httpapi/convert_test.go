package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/subweave/internal/model"
)

const testSubBody = "ss://YWVzLTI1Ni1nY206cGFzcw==@example.com:8388#HK%2001\n" +
	"trojan://secret@t.example.com:443?sni=t.example.com#JP%2001\n"

func subServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func doSub(t *testing.T, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	mux := NewMux()
	req := httptest.NewRequest(http.MethodGet, "/sub?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeAppError(t *testing.T, rec *httptest.ResponseRecorder) model.AppError {
	t.Helper()
	var resp model.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, rec.Body.String())
	}
	return resp.Error
}

func TestHandleSub_ClashDefaultConfig(t *testing.T) {
	ts := subServer(t, testSubBody)

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/yaml") {
		t.Fatalf("content-type=%q", ct)
	}

	var doc struct {
		Proxies []map[string]any `yaml:"proxies"`
		Groups  []struct {
			Name string `yaml:"name"`
		} `yaml:"proxy-groups"`
		Rules []string `yaml:"rules"`
	}
	if err := yaml.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(doc.Proxies) != 2 {
		t.Fatalf("proxies=%d, want=2", len(doc.Proxies))
	}
	if len(doc.Groups) != 2 {
		t.Fatalf("groups=%d, want default groups", len(doc.Groups))
	}
	if len(doc.Rules) == 0 || doc.Rules[len(doc.Rules)-1] != "MATCH,节点选择" {
		t.Fatalf("rules=%v, want trailing MATCH", doc.Rules)
	}
}

func TestHandleSub_MixedTarget(t *testing.T) {
	ts := subServer(t, testSubBody)

	rec := doSub(t, url.Values{"target": {"mixed"}, "url": {ts.URL}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	raw, err := base64.StdEncoding.DecodeString(rec.Body.String())
	if err != nil {
		t.Fatalf("body is not base64: %v", err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%d, want=2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ss://") || !strings.HasPrefix(lines[1], "trojan://") {
		t.Fatalf("lines=%v", lines)
	}
}

func TestHandleSub_ExternalConfig(t *testing.T) {
	ts := subServer(t, testSubBody)
	cfg := subServer(t, strings.Join([]string{
		"custom_proxy_group=手动`select`.*`[]DIRECT",
		"ruleset=手动,[]FINAL",
		"enable_rule_generator=true",
	}, "\n"))

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}, "config": {cfg.URL}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "手动") {
		t.Fatalf("custom group missing:\n%s", body)
	}
	if !strings.Contains(body, "MATCH,手动") {
		t.Fatalf("final rule missing:\n%s", body)
	}
}

func TestHandleSub_EmptySubscriptionIs422(t *testing.T) {
	ts := subServer(t, "# nothing here\n")

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want=422", rec.Code)
	}
	e := decodeAppError(t, rec)
	if e.Code != "NO_VALID_NODES" {
		t.Fatalf("code=%q, want=NO_VALID_NODES", e.Code)
	}
}

func TestHandleSub_PrimaryFetchFailureIs502(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d, want=502", rec.Code)
	}
	e := decodeAppError(t, rec)
	if e.Code != "FETCH_FAILED" {
		t.Fatalf("code=%q, want=FETCH_FAILED", e.Code)
	}
}

func TestHandleSub_SecondarySubscriptionFailureSkips(t *testing.T) {
	ok := subServer(t, testSubBody)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer bad.Close()

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ok.URL + "|" + bad.URL}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSub_IncludeExcludeOverride(t *testing.T) {
	ts := subServer(t, testSubBody)

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}, "include": {"^HK"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "HK 01") || strings.Contains(body, "JP 01") {
		t.Fatalf("include filter not applied:\n%s", body)
	}
}

func TestHandleSub_FlagOverrides(t *testing.T) {
	ts := subServer(t, testSubBody)

	rec := doSub(t, url.Values{"target": {"clash"}, "url": {ts.URL}, "udp": {"true"}, "scv": {"1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "udp: true") || !strings.Contains(body, "skip-cert-verify: true") {
		t.Fatalf("flags not forced:\n%s", body)
	}
}

func TestParseConvertGET_Validation(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"missing target", "url=http://a.example"},
		{"bad target", "target=surge&url=http://a.example"},
		{"missing url", "target=clash"},
		{"unknown param", "target=clash&url=http://a.example&nope=1"},
		{"bad tri-state", "target=clash&url=http://a.example&udp=maybe"},
		{"repeated config", "target=clash&url=http://a.example&config=a&config=b"},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/sub?"+c.query, nil)
		if _, err := parseConvertGET(r); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestParseConvertGET_SplitsPipeJoinedURLs(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sub?target=clash&url="+url.QueryEscape("http://a.example|http://b.example"), nil)
	req, err := parseConvertGET(r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(req.SubURLs) != 2 || req.SubURLs[0] != "http://a.example" || req.SubURLs[1] != "http://b.example" {
		t.Fatalf("subURLs=%v", req.SubURLs)
	}
}
