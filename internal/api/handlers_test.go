package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/ratelimit"
	"lead-intake/internal/submission"
	"lead-intake/internal/wizard"
)

const (
	businessJSON  = `{"businessName":"Acme Co","businessDomain":"retail","primaryService":"Widgets","location":"Austin","primaryLanguage":"english"}`
	websiteJSON   = `{"targetAudience":{"age":"25-45","location":"North America","interests":"Technology"},"themePreferences":{"colorScheme":"Blue and white","mood":"professional"},"fontPreference":"modern","logo":"existing","features":["store","contact"]}`
	marketingJSON = `{"socialMedia":["instagram"],"preferredMarketing":"instagram","targetLocations":"New York","contentTone":"friendly","blogging":{"needed":false},"budget":{"type":"monthly","amount":"1500"},"marketingMaterials":[],"kpis":["sales"]}`
)

var (
	recordJSON  = `{"business":` + businessJSON + `,"website":` + websiteJSON + `,"marketing":` + marketingJSON + `}`
	fileNameRex = regexp.MustCompile(`^form-submission-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.json$`)
)

type testServer struct {
	router http.Handler
	dir    string
}

func newTestServer(t *testing.T, dir string, opts RouterOptions, maxBody int64) *testServer {
	t.Helper()
	log := logger.NewTestLogger(t)

	store, err := submission.NewFileStore(dir, false)
	require.NoError(t, err)
	svc := submission.NewService(store, log)
	sessions := wizard.NewSessions(wizard.NewMemoryStore(), wizard.NewController(svc, log), log)

	h := NewHandlers(HandlersOptions{
		Submissions:  svc,
		Sessions:     sessions,
		Health:       store,
		Logger:       log,
		MaxBodyBytes: maxBody,
	})
	if opts.MetricsHandler == nil {
		opts.MetricsHandler = http.NotFoundHandler()
	}
	return &testServer{router: SetupRoutes(h, opts), dir: dir}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	var v wizard.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSubmitForm(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)

	rec := srv.do(t, http.MethodPost, "/api/submit-form", recordJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	files := srv.files(t)
	require.Len(t, files, 1)
	assert.Regexp(t, fileNameRex, files[0])

	data, err := os.ReadFile(filepath.Join(srv.dir, files[0]))
	require.NoError(t, err)
	assert.JSONEq(t, recordJSON, string(data))
}

func TestSubmitForm_StorageFailureIsOpaque(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "app", "data"), RouterOptions{}, 0)

	rec := srv.do(t, http.MethodPost, "/api/submit-form", recordJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to save form data"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "app/data")
}

func TestSubmitForm_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		maxBody int64
		status  int
	}{
		{"malformed", `{"business":`, 0, http.StatusBadRequest},
		{"missing sections", `{"business":` + businessJSON + `}`, 0, http.StatusUnprocessableEntity},
		{"invalid field", strings.Replace(recordJSON, `"retail"`, `"mining"`, 1), 0, http.StatusUnprocessableEntity},
		{"non-finite budget", strings.Replace(recordJSON, `"amount":"1500"`, `"amount":"Infinity"`, 1), 0, http.StatusUnprocessableEntity},
		{"hex budget", strings.Replace(recordJSON, `"amount":"1500"`, `"amount":"0x1p4"`, 1), 0, http.StatusUnprocessableEntity},
		{"too large", recordJSON, 64, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, t.TempDir(), RouterOptions{}, tt.maxBody)
			rec := srv.do(t, http.MethodPost, "/api/submit-form", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, srv.files(t))
		})
	}
}

func TestSubmitForm_FieldErrors(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)

	body := strings.Replace(recordJSON, `"businessName":"Acme Co"`, `"businessName":"A"`, 1)
	rec := srv.do(t, http.MethodPost, "/api/submit-form", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string `json:"error"`
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "business.businessName", resp.Fields[0].Field)
	assert.Equal(t, "Business name must be at least 2 characters", resp.Fields[0].Message)
}

func TestWizardFlow(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)

	rec := srv.do(t, http.MethodPost, "/api/wizard/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeView(t, rec)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, 1, int(view.Step))
	assert.Equal(t, 0, view.Progress)
	base := "/api/wizard/sessions/" + view.SessionID

	rec = srv.do(t, http.MethodPost, base+"/steps/website", websiteJSON)
	assert.Equal(t, http.StatusConflict, rec.Code, "steps cannot be skipped")

	rec = srv.do(t, http.MethodPost, base+"/steps/business", `{"businessName":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 1, int(decodeView(t, srv.do(t, http.MethodGet, base, "")).Step))

	steps := []struct {
		key      string
		body     string
		step     int
		progress int
	}{
		{"business", businessJSON, 2, 50},
		{"website", websiteJSON, 3, 100},
		{"marketing", marketingJSON, 4, 100},
	}
	for _, s := range steps {
		rec = srv.do(t, http.MethodPost, base+"/steps/"+s.key, s.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view = decodeView(t, rec)
		assert.Equal(t, s.step, int(view.Step))
		assert.Equal(t, s.progress, view.Progress)
	}
	assert.True(t, view.Complete)
	assert.Equal(t, "Thank You!", view.Title)

	files := srv.files(t)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(srv.dir, files[0]))
	require.NoError(t, err)
	assert.JSONEq(t, recordJSON, string(data))

	rec = srv.do(t, http.MethodPost, base+"/steps/marketing", marketingJSON)
	assert.Equal(t, http.StatusConflict, rec.Code, "complete wizards take no input")
	assert.Len(t, srv.files(t), 1)
}

func TestWizard_PersistenceFailureStaysOnMarketing(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing"), RouterOptions{}, 0)

	view := decodeView(t, srv.do(t, http.MethodPost, "/api/wizard/sessions", ""))
	base := "/api/wizard/sessions/" + view.SessionID
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, base+"/steps/business", businessJSON).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, base+"/steps/website", websiteJSON).Code)

	rec := srv.do(t, http.MethodPost, base+"/steps/marketing", marketingJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to save form data"}`, rec.Body.String())

	view = decodeView(t, srv.do(t, http.MethodGet, base, ""))
	assert.Equal(t, 3, int(view.Step))
	assert.False(t, view.Complete)
	assert.Equal(t, "Failed to save form data", view.LastError)
}

func TestWizard_RequestErrors(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)

	rec := srv.do(t, http.MethodGet, "/api/wizard/sessions/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/wizard/sessions/does-not-exist/steps/business", businessJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	view := decodeView(t, srv.do(t, http.MethodPost, "/api/wizard/sessions", ""))
	rec = srv.do(t, http.MethodPost, "/api/wizard/sessions/"+view.SessionID+"/steps/thanks", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForms(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)

	rec := srv.do(t, http.MethodGet, "/api/wizard/forms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Forms []struct {
			Key    string                   `json:"key"`
			Title  string                   `json:"title"`
			Fields []map[string]interface{} `json:"fields"`
		} `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Forms, 3)
	assert.Equal(t, "business", resp.Forms[0].Key)
	assert.Equal(t, "Website Needs", resp.Forms[1].Title)
	assert.NotEmpty(t, resp.Forms[2].Fields)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), RouterOptions{}, 0)
	rec := srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	srv = newTestServer(t, filepath.Join(t.TempDir(), "missing"), RouterOptions{}, 0)
	rec = srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 1, time.Minute)
	require.NoError(t, err)
	srv := newTestServer(t, t.TempDir(), RouterOptions{Limiter: limiter}, 0)

	rec := srv.do(t, http.MethodPost, "/api/submit-form", recordJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/submit-form", recordJSON)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Len(t, srv.files(t), 1)

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/wizard/forms", "").Code)

	mr.Close()
	view := decodeView(t, srv.do(t, http.MethodPost, "/api/wizard/sessions", ""))
	rec = srv.do(t, http.MethodPost, "/api/wizard/sessions/"+view.SessionID+"/steps/business", businessJSON)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "limiter fails closed")
}

func TestRateLimit_ForwardedHeaders(t *testing.T) {
	proxy := netip.MustParsePrefix("10.0.0.0/8")

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		remoteAddr string
		forwarded  []string
		want       []int
	}{
		{
			name:       "headers from an untrusted peer are ignored",
			remoteAddr: "203.0.113.7:4100",
			forwarded:  []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"},
			want:       []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		{
			name:       "peer outside the trusted set is still keyed by socket",
			trusted:    []netip.Prefix{proxy},
			remoteAddr: "203.0.113.7:4100",
			forwarded:  []string{"198.51.100.1", "198.51.100.2"},
			want:       []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:       "trusted proxy names distinct clients",
			trusted:    []netip.Prefix{proxy},
			remoteAddr: "10.0.0.5:4100",
			forwarded:  []string{"198.51.100.1", "198.51.100.2"},
			want:       []int{http.StatusOK, http.StatusOK},
		},
		{
			name:       "client-written hops left of the proxy do not help",
			trusted:    []netip.Prefix{proxy},
			remoteAddr: "10.0.0.5:4100",
			forwarded:  []string{"1.1.1.1, 198.51.100.9", "2.2.2.2, 198.51.100.9", "3.3.3.3, 198.51.100.9, 10.0.0.4"},
			want:       []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			limiter, err := ratelimit.NewFixedWindowLimiter(client, "test", 1, time.Minute)
			require.NoError(t, err)

			srv := newTestServer(t, t.TempDir(), RouterOptions{Limiter: limiter, TrustedProxies: tt.trusted}, 0)

			got := make([]int, 0, len(tt.forwarded))
			for _, xff := range tt.forwarded {
				req := httptest.NewRequest(http.MethodPost, "/api/submit-form", strings.NewReader(recordJSON))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Forwarded-For", xff)
				req.Header.Set("X-Real-IP", xff)
				req.RemoteAddr = tt.remoteAddr
				rec := httptest.NewRecorder()
				srv.router.ServeHTTP(rec, req)
				got = append(got, rec.Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
