package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/BppleMan/convertor/internal/config"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

const testSecret = "test-shared-secret"

func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Secret: testSecret,
		Server: "http://convertor.example.com",
		Providers: map[string]config.ProviderConfig{
			"acme": {
				APIHost:   upstreamURL,
				RawSubURL: upstreamURL + "/raw",
				Login:     config.ApiMethodConfig{Path: "/login", JSONPath: "data.token"},
				GetSub:    config.ApiMethodConfig{Path: "/sub", JSONPath: "data.url"},
				ResetSub:  config.ApiMethodConfig{Path: "/sub/reset", JSONPath: "data.url"},
				SubLogs:   &config.ApiMethodConfig{Path: "/sub/logs", JSONPath: "data.logs"},
				Headers:   map[string]string{"Authorization": "Bearer static-token"},
			},
		},
		Clients: map[string]config.ClientConfig{
			"surge": {Interval: 86400, Strict: true},
			"clash": {Interval: 86400, Strict: true},
		},
	}
}

func newTestServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(testConfig(upstreamURL), nil, 0)
}

// pathAndQuery strips the server-URL prefix off a UrlBuilder-derived URL so
// it can be fed straight to httptest.NewRequest, which wants a path.
func pathAndQuery(t *testing.T, full string) string {
	t.Helper()
	u, err := url.Parse(full)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", full, err)
	}
	return u.Path + "?" + u.RawQuery
}

func TestHealthyIsUnauthenticated(t *testing.T) {
	s := newTestServer(t, "http://upstream.invalid")
	req := httptest.NewRequest(http.MethodGet, "/actuator/healthy", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestProfileEndToEndSurge(t *testing.T) {
	const surgeText = "#!MANAGED-CONFIG http://old/raw interval=86400 strict=true\n\n" +
		"[General]\nloglevel = notify\n\n" +
		"[Proxy]\nHK-01 = ss, hk.example.com, 443, password=secret1\n\n" +
		"[Proxy Group]\nProxy = select, HK-01, DIRECT\n\n" +
		"[Rule]\nDOMAIN,example.com,DIRECT\nFINAL,DIRECT\n"

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(surgeText))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)

	ub, err := urlquery.NewUrlBuilder(testSecret, "surge", "acme", "http://convertor.example.com", upstream.URL+"/sub", 86400, true)
	if err != nil {
		t.Fatalf("NewUrlBuilder: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, pathAndQuery(t, ub.ProfileURL()), nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "[Rule]") {
		t.Fatalf("expected rendered profile to contain [Rule] section, got:\n%s", body)
	}
}

func TestProfileMissingStrictIs400(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/profile/surge/acme?sub_url=x", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestUnknownProviderIs400(t *testing.T) {
	s := newTestServer(t, "http://upstream.invalid")

	req := httptest.NewRequest(http.MethodGet, "/profile/surge/does-not-exist?strict=true&sub_url=x", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

// TestSubLogsSecretMismatchIs401 matches §8 concrete scenario 1: decrypting
// a secret field with the wrong shared secret must surface as a 401.
func TestSubLogsSecretMismatchIs401(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)

	ub, err := urlquery.NewUrlBuilder("wrong-secret", "surge", "acme", "http://convertor.example.com", upstream.URL+"/sub", 86400, true)
	if err != nil {
		t.Fatalf("NewUrlBuilder: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, pathAndQuery(t, ub.SubLogsURL()), nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}

func TestSubLogsUnconfiguredReportsError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	acme := cfg.Providers["acme"]
	acme.SubLogs = nil
	cfg.Providers["acme"] = acme
	gin.SetMode(gin.TestMode)
	s := NewServer(cfg, nil, 0)

	ub, err := urlquery.NewUrlBuilder(testSecret, "surge", "acme", "http://convertor.example.com", upstream.URL+"/sub", 86400, true)
	if err != nil {
		t.Fatalf("NewUrlBuilder: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, pathAndQuery(t, ub.SubLogsURL()), nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
}
