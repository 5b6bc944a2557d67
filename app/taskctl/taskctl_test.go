package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jrazmi/smarttasks/core/suggestions"
)

func dueIn(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append(args, "--driver", "file", "--data-dir", dir, "--no-color")
	err := execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func addTask(t *testing.T, dir, title string, days int) taskView {
	t.Helper()
	out, _, err := runCLI(t, dir, "add",
		"--title", title,
		"--description", title+" details",
		"--due", dueIn(days),
		"--output", "json",
	)
	require.NoError(t, err)

	var v taskView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func TestAddAndShow(t *testing.T) {
	dir := t.TempDir()

	task := addTask(t, dir, "Write report", 3)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "pending", task.Status)
	assert.Empty(t, task.Subtasks)

	out, _, err := runCLI(t, dir, "show", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "Due Date: "+dueIn(3))
	assert.Contains(t, out, "(none)")

	_, err = os.Stat(filepath.Join(dir, "tasks.json"))
	assert.NoError(t, err)
}

func TestAddNotifies(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := runCLI(t, dir, "add", "--title", "a", "--description", "b", "--due", dueIn(1))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Task added!")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCLI(t, dir, "add", "--title", " ", "--description", "b", "--due", dueIn(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	_, _, err = runCLI(t, dir, "add", "--title", "a", "--description", "b", "--due", dueIn(-2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dueDate")

	out, _, err := runCLI(t, dir, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestEdit(t *testing.T) {
	dir := t.TempDir()
	task := addTask(t, dir, "Plan trip", 5)

	out, _, err := runCLI(t, dir, "edit", task.ID,
		"--status", "completed",
		"--subtasks", "Book flights,Pack bags",
		"--output", "json",
	)
	require.NoError(t, err)

	var got taskView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, []string{"Book flights", "Pack bags"}, got.Subtasks)
	assert.Equal(t, "Plan trip", got.Title)

	_, _, err = runCLI(t, dir, "edit", task.ID)
	assert.ErrorContains(t, err, "nothing to change")

	_, _, err = runCLI(t, dir, "edit", "missing", "--title", "x")
	assert.ErrorContains(t, err, "task missing")
}

func TestLs(t *testing.T) {
	dir := t.TempDir()
	addTask(t, dir, "Groceries", 4)
	addTask(t, dir, "Dentist", 1)
	laundry := addTask(t, dir, "Laundry", 2)

	_, _, err := runCLI(t, dir, "edit", laundry.ID, "--status", "completed")
	require.NoError(t, err)

	t.Run("table", func(t *testing.T) {
		out, _, err := runCLI(t, dir, "ls", "--limit", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Dentist")
		assert.Contains(t, out, "Laundry")
		assert.NotContains(t, out, "Groceries")
		assert.Contains(t, out, "page 1/2")
		assert.Contains(t, out, "3 tasks")
	})

	t.Run("json page two", func(t *testing.T) {
		out, _, err := runCLI(t, dir, "ls", "--limit", "2", "--page", "2", "--output", "json")
		require.NoError(t, err)

		var got listView
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Records, 1)
		assert.Equal(t, "Groceries", got.Records[0].Title)
		assert.Equal(t, 3, got.PageInfo.Total)
		assert.True(t, got.PageInfo.HasPrev)
		assert.False(t, got.PageInfo.HasNext)
	})

	t.Run("filter and order", func(t *testing.T) {
		out, _, err := runCLI(t, dir, "ls", "--status", "pending", "--order", "title,DESC", "--output", "yaml")
		require.NoError(t, err)

		var got listView
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		require.Len(t, got.Records, 2)
		assert.Equal(t, "Groceries", got.Records[0].Title)
		assert.Equal(t, "Dentist", got.Records[1].Title)
	})

	t.Run("search", func(t *testing.T) {
		out, _, err := runCLI(t, dir, "ls", "--search", "LAUN", "--output", "json")
		require.NoError(t, err)

		var got listView
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Records, 1)
		assert.Equal(t, laundry.ID, got.Records[0].ID)
	})

	t.Run("bad flags", func(t *testing.T) {
		_, _, err := runCLI(t, dir, "ls", "--order", "priority")
		assert.Error(t, err)
		_, _, err = runCLI(t, dir, "ls", "--page", "0")
		assert.Error(t, err)
		_, _, err = runCLI(t, dir, "ls", "--status", "blocked")
		assert.Error(t, err)
	})
}

func TestListFlagsFilter(t *testing.T) {
	filter, err := listFlags{status: "all"}.filter()
	require.NoError(t, err)
	assert.Nil(t, filter.SearchTerm)
	assert.Nil(t, filter.Status)

	filter, err = listFlags{search: "milk", status: "Pending", dueBefore: "2026-12-01"}.filter()
	require.NoError(t, err)
	require.NotNil(t, filter.SearchTerm)
	assert.Equal(t, "milk", *filter.SearchTerm)
	require.NotNil(t, filter.Status)
	require.NotNil(t, filter.DueBefore)
	assert.Equal(t, "2026-12-01", *filter.DueBefore)

	_, err = listFlags{dueAfter: "soon"}.filter()
	assert.ErrorContains(t, err, "due-after")
}

func TestRm(t *testing.T) {
	dir := t.TempDir()
	task := addTask(t, dir, "Old task", 1)

	_, stderr, err := runCLI(t, dir, "rm", task.ID)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Task deleted!")

	_, _, err = runCLI(t, dir, "show", task.ID)
	assert.Error(t, err)

	_, _, err = runCLI(t, dir, "rm", task.ID)
	assert.NoError(t, err)
}

func TestSuggest(t *testing.T) {
	dir := t.TempDir()
	task := addTask(t, dir, "Plan trip", 7)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req suggestions.ProxyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Plan trip", req.TaskTitle)
		assert.Equal(t, "Plan trip details", req.TaskDescription)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(suggestions.ProxyResponse{Subtasks: "Book flights, Reserve hotel, Pack bags"})
	}))
	defer srv.Close()

	out, stderr, err := runCLI(t, dir, "suggest", task.ID, "--proxy", srv.URL, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Generating subtasks...")
	assert.Contains(t, stderr, "Subtasks generated!")

	var got taskView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Book flights", "Reserve hotel", "Pack bags"}, got.Subtasks)
}

func TestSuggestFailureLeavesTask(t *testing.T) {
	dir := t.TempDir()
	task := addTask(t, dir, "Plan trip", 7)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(suggestions.ProxyResponse{Error: "Failed to generate subtasks"})
	}))
	defer srv.Close()

	_, stderr, err := runCLI(t, dir, "suggest", task.ID, "--proxy", srv.URL)
	require.Error(t, err)
	assert.Contains(t, stderr, "Failed to generate subtasks.")

	out, _, err := runCLI(t, dir, "show", task.ID, "--output", "json")
	require.NoError(t, err)
	var got taskView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Subtasks)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	first := addTask(t, dir, "First", 2)
	second := addTask(t, dir, "Second", 1)

	file := filepath.Join(t.TempDir(), "tasks.yaml")
	_, _, err := runCLI(t, dir, "export", "--output", "yaml", "--file", file)
	require.NoError(t, err)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	var got []taskView
	require.NoError(t, yaml.Unmarshal(b, &got))
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	out, _, err := runCLI(t, dir, "export")
	require.NoError(t, err)
	var asJSON []taskView
	require.NoError(t, json.Unmarshal([]byte(out), &asJSON))
	assert.Len(t, asJSON, 2)
}

func TestSQLiteDriver(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tasks.db")

	var stdout, stderr bytes.Buffer
	err := execute([]string{"add", "--title", "a", "--description", "b", "--due", dueIn(1),
		"--driver", "sqlite", "--sqlite-path", db, "--no-color"}, &stdout, &stderr)
	require.NoError(t, err)

	stdout.Reset()
	err = execute([]string{"ls", "--output", "json", "--driver", "sqlite", "--sqlite-path", db}, &stdout, &stderr)
	require.NoError(t, err)

	var got listView
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Len(t, got.Records, 1)
}

func TestUnknownOutput(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "ls", "--output", "xml")
	assert.ErrorContains(t, err, "unknown output")
}
