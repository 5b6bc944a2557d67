package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/sdk/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRESTClient(logger.New(io.Discard, "ERROR"), Options{
		APIKey:  "secret",
		Model:   DefaultModel,
		BaseURL: srv.URL,
	})
}

func TestRESTClientGenerateText(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Book flight, Book hotel"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`)
	})

	text, err := c.GenerateText(context.Background(), "split this")
	require.NoError(t, err)
	assert.Equal(t, "Book flight, Book hotel", text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "split this", got.Contents[0].Parts[0].Text)
}

func TestRESTClientUnexpectedShape(t *testing.T) {
	for _, body := range []string{`{}`, `{"candidates":[]}`, `{"candidates":[{"content":{"parts":[]}}]}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		text, err := c.GenerateText(context.Background(), "p")
		require.NoError(t, err, body)
		assert.Equal(t, "", text, body)
	}
}

func TestRESTClientErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	_, err := c.GenerateText(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api error: 429 quota")
}

func TestNewRequiresKey(t *testing.T) {
	_, _, err := New(context.Background(), logger.New(io.Discard, "ERROR"), Options{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, _, err = New(context.Background(), logger.New(io.Discard, "ERROR"), Options{APIKey: "k", Transport: "carrier-pigeon"})
	assert.Error(t, err)

	g, closeFn, err := New(context.Background(), logger.New(io.Discard, "ERROR"), Options{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &RESTClient{}, g)
	assert.NoError(t, closeFn())
}
