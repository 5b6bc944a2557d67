package tasksmemstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/tasksmemstore"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tasksmemstore.NewStore()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := tasksrepo.Collection{{ID: "a", Title: "t", Description: "d", DueDate: "2030-01-01", Status: tasksrepo.StatusPending, Subtasks: []string{"x"}}}
	require.NoError(t, s.Save(ctx, want))
	assert.Equal(t, 1, s.Saves())

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStorePrimeAndFail(t *testing.T) {
	ctx := context.Background()
	s := tasksmemstore.NewStore()

	s.Prime([]byte("{not json"))
	_, err := s.Load(ctx)
	assert.Error(t, err)

	boom := errors.New("disk full")
	s.FailSaves(boom)
	assert.ErrorIs(t, s.Save(ctx, tasksrepo.Collection{}), boom)
	assert.Equal(t, "{not json", string(s.Raw()))

	s.FailSaves(nil)
	require.NoError(t, s.Save(ctx, nil))
	assert.Equal(t, "[]", string(s.Raw()))
}
