package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/telemetry"
)

type payload struct {
	Name string `json:"name"`
}

func (p payload) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func newHandler(origins ...string) *web.WebHandler {
	return web.NewWebHandler(web.HandlerOptions{CORSOrigins: origins},
		web.WithLogging(logger.New(io.Discard, "error")),
		web.WithTelemetry(telemetry.NewTelemetry()),
	)
}

func TestHandleJSONAndTraceHeader(t *testing.T) {
	h := newHandler()
	h.GET("/things/{id}", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse(payload{Name: web.Param(r, "id") + web.QueryParam(r, "suffix")})
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/abc?suffix=!", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(web.TraceIDHeader))
	assert.NotEqual(t, telemetry.NoTrace, rec.Header().Get(web.TraceIDHeader))

	var got payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc!", got.Name)
}

func TestNilEncoderIsNoContent(t *testing.T) {
	h := newHandler()
	h.DELETE("/things/{id}", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStatusFromEncoder(t *testing.T) {
	h := newHandler()
	h.POST("/things", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponseWithStatus(payload{Name: "made"}, http.StatusCreated)
	})
	h.GET("/broken", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewErrorWithStatus("nope", http.StatusBadRequest)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestGroupMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) web.Middleware {
		return func(next web.HandlerFunc) web.HandlerFunc {
			return func(ctx context.Context, r *http.Request) web.Encoder {
				order = append(order, name)
				return next(ctx, r)
			}
		}
	}

	h := web.NewWebHandler(web.HandlerOptions{}, web.WithGlobalMiddleware(mark("global")))
	api := h.Group("/api/", mark("group"))
	v1 := api.Group("/v1", mark("nested"))
	v1.GET("/ping", func(ctx context.Context, r *http.Request) web.Encoder {
		order = append(order, "handler")
		return nil
	}, mark("route"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"global", "group", "nested", "route", "handler"}, order)
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler("http://localhost:5173")
	h.GET("/tasks", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse([]string{})
	})
	h.POST("/tasks", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")

	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlerOptionsOverride(t *testing.T) {
	h := web.NewWebHandler(web.HandlerOptions{DefaultHeaders: map[string]string{"X-Frame-Options": "DENY"}},
		web.WithCORS([]string{"http://localhost:5173"}),
		web.WithDefaultHeaders(map[string]string{"X-Content-Type-Options": "nosniff"}),
		web.WithLogging(logger.New(io.Discard, "error")),
	)
	h.GET("/tasks", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse([]string{})
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestDecode(t *testing.T) {
	var p payload
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, web.Decode(r, &p))
	assert.Equal(t, "x", p.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.ErrorIs(t, web.Decode(r, &p), web.ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	assert.ErrorContains(t, web.Decode(r, &payload{}), "name is required")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorContains(t, web.Decode(r, &p), "json decode")
}

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := web.LoadServerConfig("WEBTEST_UNSET")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIRoute)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	t.Setenv("WEBTEST_PORT", ":9999")
	srv, err := web.NewServerFromEnv("WEBTEST", web.WithHandler(newHandler()))
	require.NoError(t, err)
	assert.Equal(t, ":9999", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
