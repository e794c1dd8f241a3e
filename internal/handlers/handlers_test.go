package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/funnel"
	"elite-rental-funnel/internal/httpclient"
	"elite-rental-funnel/internal/leadhook"
	"elite-rental-funnel/internal/listings"
	"elite-rental-funnel/internal/metrics"
	"elite-rental-funnel/internal/middleware"
	"elite-rental-funnel/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router       *gin.Engine
	upstreamHits int32
	hookBodies   chan []byte
}

func newTestEnv(t *testing.T, upstreamStatus int, hookEnabled bool) *testEnv {
	t.Helper()

	env := &testEnv{hookBodies: make(chan []byte, 4)}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&env.upstreamHits, 1)
		w.WriteHeader(upstreamStatus)
		if upstreamStatus == http.StatusOK {
			_, _ = io.WriteString(w, `[{"Unit":{"Id":"1"}}]`)
		}
	}))
	t.Cleanup(upstream.Close)

	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		env.hookBodies <- body
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(hook.Close)

	logger := logrus.NewEntry(logrus.New())
	m := metrics.New()

	listingsCfg := config.ListingsConfig{
		UpstreamURL:    upstream.URL,
		ListingBaseURL: "https://example.com/listings",
		CacheMaxAge:    600,
		Timeout:        2 * time.Second,
		UserAgent:      "test",
	}
	hookCfg := config.HookConfig{Source: "test", Timeout: 2 * time.Second, UserAgent: "test"}
	if hookEnabled {
		hookCfg.URL = hook.URL
	}

	page, err := funnel.DefaultPage()
	require.NoError(t, err)

	env.router = gin.New()
	env.router.Use(middleware.RequestID())
	SetupRoutes(env.router, &RouterConfig{
		Proxy:     listings.NewProxy(listingsCfg, httpclient.New(listingsCfg.Timeout, "test"), m, logger),
		Forwarder: leadhook.NewForwarder(hookCfg, httpclient.New(hookCfg.Timeout, "test"), m, logger),
		Metrics:   m,
		Markup:    web.IndexHTML,
		Page:      page,
	})
	return env
}

func (e *testEnv) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetListings(t *testing.T) {
	t.Run("success is cacheable", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, false)

		rec := env.do(http.MethodGet, "/.netlify/functions/listings", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `[{"Unit":{"Id":"1"}}]`, rec.Body.String())
		assert.Equal(t, "public, max-age=600", rec.Header().Get("Cache-Control"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&env.upstreamHits))
	})

	t.Run("upstream status is propagated", func(t *testing.T) {
		env := newTestEnv(t, http.StatusBadGateway, false)

		rec := env.do(http.MethodGet, "/api/listings", "", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, `{"error":"Upstream error","status":502}`, rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}

func TestPostLead(t *testing.T) {
	t.Run("forwards JSON payload", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, true)

		rec := env.do(http.MethodPost, "/.netlify/functions/lead-hook", "application/json", `{"email":"a@b.co"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true,"status":200}`, rec.Body.String())

		var envelope leadhook.Envelope
		require.NoError(t, json.Unmarshal(<-env.hookBodies, &envelope))
		assert.Equal(t, "test", envelope.Source)
		assert.Equal(t, map[string]interface{}{"email": "a@b.co"}, envelope.Payload)
	})

	t.Run("rejects other methods", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, true)

		rec := env.do(http.MethodPut, "/.netlify/functions/lead-hook", "", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method Not Allowed", rec.Body.String())
	})

	t.Run("no destination configured", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, false)

		rec := env.do(http.MethodPost, "/api/lead-hook", "text/plain", "hello")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestPage(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, false)

	t.Run("serves markup", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), `id="leadForm"`)
	})

	t.Run("accepts the lead form", func(t *testing.T) {
		form := url.Values{"form-name": {"lead"}, "listing_id": {"1"}}
		rec := env.do(http.MethodPost, "/", "application/x-www-form-urlencoded", form.Encode())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Thank you", rec.Body.String())
	})

	t.Run("rejects unknown forms", func(t *testing.T) {
		form := url.Values{"form-name": {"other"}}
		rec := env.do(http.MethodPost, "/", "application/x-www-form-urlencoded", form.Encode())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, false)

	rec := env.do(http.MethodGet, "/missing", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestLeadLogFieldsStripMarkup(t *testing.T) {
	page, err := funnel.DefaultPage()
	require.NoError(t, err)
	h := NewPageHandler(web.IndexHTML, page)

	form := url.Values{
		"form-name":   {"lead"},
		"first_name":  {"<script>alert(1)</script>Ada"},
		"utm_content": {"<b>banner</b>"},
		"gclid":       {""},
	}
	fields := h.leadLogFields(form, "req-1")

	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "Ada", fields["first_name"])
	assert.Equal(t, "banner", fields["utm_content"])
	assert.NotContains(t, fields, "gclid")
}
