package suggestions_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

func quiet() *logger.Logger {
	return logger.New(io.Discard, "ERROR")
}

func TestParseSubtasks(t *testing.T) {
	got, err := suggestions.ParseSubtasks("Do X, Do Y, , Do Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"Do X", "Do Y", "Do Z"}, got)

	got, err = suggestions.ParseSubtasks("  single step \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"single step"}, got)

	for _, raw := range []string{"", " , ,", "   "} {
		_, err := suggestions.ParseSubtasks(raw)
		assert.ErrorIs(t, err, suggestions.ErrNoSuggestions, raw)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := suggestions.BuildPrompt("Plan trip", "Book flights and hotel")
	assert.Contains(t, p, "3 to 5 short and actionable subtasks")
	assert.Contains(t, p, "comma-separated list ONLY")
	assert.Contains(t, p, `Task Title: "Plan trip"`)
	assert.Contains(t, p, `Task Description: "Book flights and hotel"`)
}

func newProxy(t *testing.T, h http.HandlerFunc) *suggestions.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return suggestions.NewClient(quiet(), suggestions.Options{ProxyURL: srv.URL})
}

func TestClientSuggest(t *testing.T) {
	var got suggestions.ProxyRequest
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(suggestions.ProxyResponse{Subtasks: "Book flight, Book hotel, Pack bags"})
	})

	subtasks, err := c.Suggest(context.Background(), "Plan trip", "Book flights and hotel")
	require.NoError(t, err)
	assert.Equal(t, []string{"Book flight", "Book hotel", "Pack bags"}, subtasks)
	assert.Equal(t, suggestions.ProxyRequest{TaskTitle: "Plan trip", TaskDescription: "Book flights and hotel"}, got)
}

func TestClientFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status 500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"Failed to generate subtasks"}`)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>")
		},
		"empty": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"subtasks":""}`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newProxy(t, h).Suggest(context.Background(), "t", "d")
			assert.ErrorIs(t, err, suggestions.ErrSuggestionFailed)
		})
	}

	_, err := suggestions.NewClient(quiet(), suggestions.Options{}).Suggest(context.Background(), "t", "d")
	assert.ErrorIs(t, err, suggestions.ErrSuggestionFailed)

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err = suggestions.NewClient(quiet(), suggestions.Options{ProxyURL: srv.URL}).Suggest(context.Background(), "t", "d")
	assert.ErrorIs(t, err, suggestions.ErrSuggestionFailed)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestDirect(t *testing.T) {
	d := suggestions.NewDirect(quiet(), generatorFunc(func(_ context.Context, prompt string) (string, error) {
		assert.True(t, strings.Contains(prompt, `"Taxes"`))
		return "Gather forms, File online", nil
	}))
	got, err := d.Suggest(context.Background(), "Taxes", "2025 return")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gather forms", "File online"}, got)

	d = suggestions.NewDirect(quiet(), generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("gemini api error: 503")
	}))
	_, err = d.Suggest(context.Background(), "Taxes", "2025 return")
	assert.ErrorIs(t, err, suggestions.ErrSuggestionFailed)
}

type countingNotifier struct {
	mu       sync.Mutex
	failures []string
}

func (n *countingNotifier) Info(context.Context, string)    {}
func (n *countingNotifier) Success(context.Context, string) {}

func (n *countingNotifier) Failure(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func newRepo(t *testing.T, c *suggestions.Client, n tasksrepo.Notifier) *tasksrepo.Repository {
	t.Helper()
	repo := tasksrepo.NewRepository(quiet(), tasksmemstore.NewStore(),
		tasksrepo.WithSuggester(c),
		tasksrepo.WithNotifier(n),
		tasksrepo.WithClock(func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }),
	)
	repo.Load(context.Background())
	return repo
}

func TestEndToEndSuggestionsApplied(t *testing.T) {
	ctx := context.Background()
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"subtasks":"Book flight, Book hotel, Pack bags"}`)
	})
	repo := newRepo(t, c, &countingNotifier{})

	task, err := repo.Create(ctx, tasksrepo.CreateTask{Title: "Plan trip", Description: "Book flights and hotel", DueDate: "2026-12-01"})
	require.NoError(t, err)

	_, err = repo.RequestSuggestions(ctx, task.ID)
	require.NoError(t, err)

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book flight", "Book hotel", "Pack bags"}, got.Subtasks)
	assert.False(t, repo.InFlight(task.ID))
}

func TestEndToEndProxyErrorLeavesTask(t *testing.T) {
	ctx := context.Background()
	c := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Failed to generate subtasks"}`)
	})
	n := &countingNotifier{}
	repo := newRepo(t, c, n)

	task, err := repo.Create(ctx, tasksrepo.CreateTask{Title: "Plan trip", Description: "Book flights and hotel", DueDate: "2026-12-01"})
	require.NoError(t, err)

	_, err = repo.RequestSuggestions(ctx, task.ID)
	require.ErrorIs(t, err, suggestions.ErrSuggestionFailed)
	assert.ErrorIs(t, err, tasksrepo.ErrSuggestionFailed)
	assert.Equal(t, 1, strings.Count(err.Error(), "failed to generate subtasks"), err.Error())

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Subtasks, got.Subtasks)
	assert.Equal(t, []string{tasksrepo.MsgSubtasksFailed}, n.failures)
	assert.False(t, repo.InFlight(task.ID))
}
