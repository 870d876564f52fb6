// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"io"
	"sync"

	"go.uber.org/zap"
)

// Store guards the aggregate of the engine. Mutations are exclusive, while
// reads and saves may run concurrently with each other. Each save writes its
// own temporary file, so concurrent saves to the same path each leave a
// complete snapshot behind.
type Store struct {
	mu   sync.RWMutex
	data *Data
	log  *zap.Logger
}

// NewStore creates a store holding the given aggregate, or an empty one if
// data is nil. A nil logger disables logging.
func NewStore(data *Data, logger *zap.Logger) *Store {
	if data == nil {
		data = NewData()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{data: data, log: logger}
}

// LoadStore creates a store holding the aggregate of the snapshot at the
// given path. A failure to load is meant to abort the start of the engine.
func LoadStore(path string, logger *zap.Logger) (*Store, error) {
	data, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	store := NewStore(data, logger)
	store.log.Info("loaded snapshot",
		zap.String("path", path),
		zap.Int("orderbooks", len(data.OrderBooks)),
		zap.Int("users", len(data.Accounts)),
	)
	return store, nil
}

// Update runs the given function with exclusive access to the aggregate.
func (s *Store) Update(update func(*Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return update(s.data)
}

// View runs the given function with shared access to the aggregate. The
// function must not modify the aggregate.
func (s *Store) View(view func(*Data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view(s.data)
}

// Save atomically writes a snapshot of the aggregate to the given path. No
// mutation is in flight while the snapshot is taken.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := SaveFile(path, s.data); err != nil {
		s.log.Error("failed to save snapshot", zap.String("path", path), zap.Error(err))
		return err
	}
	s.log.Debug("saved snapshot", zap.String("path", path))
	return nil
}

// Snapshot writes a snapshot of the aggregate to the given writer.
func (s *Store) Snapshot(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(w, s.data)
}

// Replace swaps the aggregate, as done when restoring a checkpoint.
func (s *Store) Replace(data *Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.log.Info("replaced state",
		zap.Int("orderbooks", len(data.OrderBooks)),
		zap.Int("users", len(data.Accounts)),
	)
}
