package taskspgxstore_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/smarttasks/infrastructure/postgresdb"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

func TestStore(t *testing.T) {
	url := os.Getenv("SMARTTASKS_TEST_PG_URL")
	if url == "" {
		t.Skip("SMARTTASKS_TEST_PG_URL not set")
	}

	ctx := context.Background()
	log := logger.New(io.Discard, "ERROR")

	pool, err := postgresdb.NewTestDB(url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgresdb.Migrate(ctx, log, pool))

	entry := "test-" + uuid.NewString()
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM storage_entries WHERE name = $1", entry)
	})
	s := taskspgxstore.NewStore(log, pool, entry)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := tasksrepo.Collection{{ID: "1", Title: "a", Description: "b", DueDate: "2030-01-01", Status: tasksrepo.StatusPending, Subtasks: []string{"c"}}}
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Save(ctx, want))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
