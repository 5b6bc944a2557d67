// Package tasksmemstore keeps the task collection as JSON bytes in memory.
// It round-trips through the same encoding as the durable stores, and can be
// primed with raw bytes or a save error to stand in for broken storage.
package tasksmemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
)

type Store struct {
	mu      sync.Mutex
	raw     []byte
	saveErr error
	saves   int
}

func NewStore() *Store {
	return &Store{}
}

// Prime replaces the stored bytes as if another writer had put them there.
func (s *Store) Prime(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = slices.Clone(raw)
}

// FailSaves makes every following Save return err. A nil err clears it.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Raw returns a copy of the stored bytes.
func (s *Store) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.raw)
}

// Saves reports how many writes succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Store) Load(ctx context.Context) (tasksrepo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw == nil {
		return nil, nil
	}
	var c tasksrepo.Collection
	if err := json.Unmarshal(s.raw, &c); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, c tasksrepo.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	if c == nil {
		c = tasksrepo.Collection{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	s.raw = b
	s.saves++
	return nil
}
