package suggestionsbridge_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/bridge/suggestionsbridge"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newProxy(gen suggestions.Generator) (http.Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(&buf, "debug")
	h := web.NewWebHandler(web.HandlerOptions{}, web.WithLogging(log))
	suggestionsbridge.AddHttpRoutes(h.Group("/api"), suggestionsbridge.Config{Log: log, Generator: gen})
	return h, &buf
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/gemini", strings.NewReader(body)))
	return rec
}

func TestProxyReturnsRawText(t *testing.T) {
	var prompt string
	h, _ := newProxy(generatorFunc(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "Outline, Draft, Review", nil
	}))

	rec := post(h, `{"taskTitle":"Write report","taskDescription":"Q3 numbers"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subtasks":"Outline, Draft, Review"}`, rec.Body.String())
	assert.Equal(t, suggestions.BuildPrompt("Write report", "Q3 numbers"), prompt)
}

func TestProxyFailures(t *testing.T) {
	failing := generatorFunc(func(ctx context.Context, p string) (string, error) {
		return "", errors.New("gemini api error: 429 quota")
	})

	tests := []struct {
		name string
		gen  suggestions.Generator
		body string
		log  string
	}{
		{"generator error", failing, `{"taskTitle":"a","taskDescription":"b"}`, "429 quota"},
		{"bad body", failing, `{`, "json decode"},
		{"empty body", failing, ``, "request body is empty"},
		{"no generator", nil, `{"taskTitle":"a","taskDescription":"b"}`, "GEMINI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, buf := newProxy(tt.gen)

			rec := post(h, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Failed to generate subtasks"}`, rec.Body.String())
			assert.Contains(t, buf.String(), tt.log)
		})
	}
}

func TestProxyServesSuggestionClient(t *testing.T) {
	h, _ := newProxy(generatorFunc(func(ctx context.Context, p string) (string, error) {
		return " Pack bags ,, Book hotel ", nil
	}))
	srv := httptest.NewServer(h)
	defer srv.Close()

	client := suggestions.NewClient(logger.New(&bytes.Buffer{}, "error"), suggestions.Options{ProxyURL: srv.URL + "/api/gemini"})
	got, err := client.Suggest(context.Background(), "Trip", "Weekend away")

	require.NoError(t, err)
	assert.Equal(t, []string{"Pack bags", "Book hotel"}, got)
}
