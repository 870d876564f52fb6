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
	"fmt"

	"github.com/dexstate/statecommit/common"
)

//go:generate mockgen -source store.go -destination store_mocks.go -package smt

// NodeStore retains the nodes of a tree addressed by their hash, as well as
// the most recently flushed root.
type NodeStore interface {
	// Get retrieves the node with the given hash. If there is no such node,
	// an error wrapping ErrNodeNotFound is returned.
	Get(hash common.Hash) (Node, error)

	// Set stores a node under its hash. Since nodes are content-addressed,
	// storing the same node twice has no effect.
	Set(hash common.Hash, node Node) error

	// GetRoot returns the root recorded by the last SetRoot call, or the zero
	// hash if no root has been recorded.
	GetRoot() (common.Hash, error)

	// SetRoot durably records the given root. All nodes set before are
	// retained durably as well once this call returns.
	SetRoot(root common.Hash) error

	// Flush writes buffered data to the underlying storage.
	Flush() error

	// Close flushes and releases the store.
	Close() error
}

// MemoryStore is a NodeStore keeping all nodes in memory. It is not safe for
// concurrent writes.
type MemoryStore struct {
	nodes map[common.Hash]Node
	root  common.Hash
}

var _ NodeStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: map[common.Hash]Node{}}
}

func (s *MemoryStore) Get(hash common.Hash) (Node, error) {
	node, found := s.nodes[hash]
	if !found {
		return Node{}, fmt.Errorf("%w: %v", ErrNodeNotFound, hash)
	}
	return node, nil
}

func (s *MemoryStore) Set(hash common.Hash, node Node) error {
	s.nodes[hash] = node
	return nil
}

func (s *MemoryStore) GetRoot() (common.Hash, error) {
	return s.root, nil
}

func (s *MemoryStore) SetRoot(root common.Hash) error {
	s.root = root
	return nil
}

// NumNodes returns the number of nodes retained by this store.
func (s *MemoryStore) NumNodes() int {
	return len(s.nodes)
}

func (s *MemoryStore) Flush() error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
