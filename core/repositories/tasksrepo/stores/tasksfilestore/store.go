// Package tasksfilestore persists the task collection as a JSON file named
// after its storage entry.
package tasksfilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jrazmi/smarttasks/core/repositories"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

type Store struct {
	log  *logger.Logger
	path string
}

// NewStore stores the entry at <dir>/<entry>.json. An empty entry uses the
// default entry name.
func NewStore(log *logger.Logger, dir string, entry string) *Store {
	if entry == "" {
		entry = repositories.DefaultEntryName
	}
	return &Store{
		log:  log,
		path: filepath.Join(dir, entry+".json"),
	}
}

// Path is the file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (tasksrepo.Collection, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var c tasksrepo.Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return c, nil
}

// Save writes the collection to a temp file in the same directory and renames
// it over the entry, so readers never see a partial document.
func (s *Store) Save(ctx context.Context, c tasksrepo.Collection) error {
	if c == nil {
		c = tasksrepo.Collection{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	s.log.DebugContext(ctx, "tasks written", "path", s.path, "count", len(c))
	return nil
}
