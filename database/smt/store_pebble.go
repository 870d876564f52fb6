// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/dexstate/statecommit/common"
)

// PebbleStore is a NodeStore persisting nodes in a Pebble instance.
type PebbleStore struct {
	db *pebble.DB
}

var _ NodeStore = &PebbleStore{}

// OpenPebbleStore opens or creates a Pebble node store in the given directory.
func OpenPebbleStore(directory string) (*PebbleStore, error) {
	db, err := pebble.Open(directory, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open Pebble node store in %s: %w", directory, err)
	}
	return &PebbleStore{db: db}, nil
}

// get copies the value stored under the given key since Pebble only lends
// out its buffer until the closer is closed.
func (s *PebbleStore) get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	res := make([]byte, len(data))
	copy(res, data)
	return res, closer.Close()
}

func (s *PebbleStore) Get(hash common.Hash) (Node, error) {
	data, err := s.get(nodeDbKey(hash))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Node{}, fmt.Errorf("%w: %v", ErrNodeNotFound, hash)
		}
		return Node{}, err
	}
	return DecodeNode(data)
}

func (s *PebbleStore) Set(hash common.Hash, node Node) error {
	return s.db.Set(nodeDbKey(hash), node.Encode(), pebble.NoSync)
}

func (s *PebbleStore) GetRoot() (common.Hash, error) {
	data, err := s.get([]byte(rootKey))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return common.Hash{}, nil
		}
		return common.Hash{}, err
	}
	return decodeRoot(data)
}

func (s *PebbleStore) SetRoot(root common.Hash) error {
	return s.db.Set([]byte(rootKey), root[:], pebble.Sync)
}

func (s *PebbleStore) Flush() error {
	return s.db.Flush()
}

func (s *PebbleStore) Close() error {
	return errors.Join(s.Flush(), s.db.Close())
}
