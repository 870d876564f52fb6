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

	"github.com/dexstate/statecommit/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Database keys are prefixed to separate nodes from metadata.
const (
	nodeKeyPrefix = 'n'
	rootKey       = "root"
)

func nodeDbKey(hash common.Hash) []byte {
	res := make([]byte, 0, 1+len(hash))
	res = append(res, nodeKeyPrefix)
	return append(res, hash[:]...)
}

func decodeRoot(data []byte) (common.Hash, error) {
	root, err := common.HashFromBytes(data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: invalid root record: %v", ErrCorruptNode, err)
	}
	return root, nil
}

// LevelDbStore is a NodeStore persisting nodes in a LevelDB instance.
type LevelDbStore struct {
	db *leveldb.DB
}

var _ NodeStore = &LevelDbStore{}

// OpenLevelDbStore opens or creates a LevelDB node store in the given directory.
func OpenLevelDbStore(directory string) (*LevelDbStore, error) {
	db, err := leveldb.OpenFile(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB node store in %s: %w", directory, err)
	}
	return &LevelDbStore{db: db}, nil
}

func (s *LevelDbStore) Get(hash common.Hash) (Node, error) {
	data, err := s.db.Get(nodeDbKey(hash), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Node{}, fmt.Errorf("%w: %v", ErrNodeNotFound, hash)
		}
		return Node{}, err
	}
	return DecodeNode(data)
}

func (s *LevelDbStore) Set(hash common.Hash, node Node) error {
	return s.db.Put(nodeDbKey(hash), node.Encode(), nil)
}

func (s *LevelDbStore) GetRoot() (common.Hash, error) {
	data, err := s.db.Get([]byte(rootKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return common.Hash{}, nil
		}
		return common.Hash{}, err
	}
	return decodeRoot(data)
}

// SetRoot records the root with a synchronous write, which also syncs the
// write-ahead log holding all earlier node writes.
func (s *LevelDbStore) SetRoot(root common.Hash) error {
	return s.db.Put([]byte(rootKey), root[:], &opt.WriteOptions{Sync: true})
}

func (s *LevelDbStore) Flush() error {
	return nil
}

func (s *LevelDbStore) Close() error {
	return s.db.Close()
}
