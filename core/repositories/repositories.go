// Package repositories holds the contracts shared by every repository and
// its storage adapters.
package repositories

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrPersist marks a failed write to the backing store.
	ErrPersist = errors.New("persisting collection")
)

// DefaultEntryName is the storage entry a collection lives under when the
// adapter is not told otherwise.
const DefaultEntryName = "tasks"

// EntryStorer loads and saves one whole collection kept under a single named
// entry. Load returns the zero collection and a nil error when the entry has
// never been written.
type EntryStorer[C any] interface {
	Load(ctx context.Context) (C, error)
	Save(ctx context.Context, collection C) error
}
