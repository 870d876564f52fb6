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
)

// Tree is a sparse Merkle tree mapping 256-bit keys to 256-bit values. Keys
// with a zero value are considered absent. The tree is not safe for concurrent
// use; callers need to provide their own synchronization.
type Tree struct {
	store NodeStore
	root  common.Hash
}

// NewTree creates an empty tree retaining its nodes in the given store.
func NewTree(store NodeStore) *Tree {
	return &Tree{store: store}
}

// OpenTree creates a tree on the given store, starting at the root recorded
// by the last flush of the store.
func OpenTree(store NodeStore) (*Tree, error) {
	root, err := store.GetRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to load root: %w", err)
	}
	tree := NewTree(store)
	if err := tree.Reset(root); err != nil {
		return nil, err
	}
	return tree, nil
}

// Root returns the current root hash, which is the zero hash for an empty tree.
func (t *Tree) Root() common.Hash {
	return t.root
}

// Get returns the value stored for the given key, or the zero hash if the key
// is not present.
func (t *Tree) Get(key common.Hash) (common.Hash, error) {
	return t.GetAt(t.root, key)
}

// GetAt looks up the value of a key in the version of the tree identified by
// the given root. Any root produced by this tree since its nodes were written
// can be used.
func (t *Tree) GetAt(root common.Hash, key common.Hash) (common.Hash, error) {
	var res common.Hash
	err := t.walk(root, key, nil, func(leaf Node) {
		if leaf.Key() == key {
			res = leaf.Value()
		}
	})
	return res, err
}

// Update sets the value of the given key and returns the new root. Setting a
// zero value removes the key. On error, the tree remains at its old root.
func (t *Tree) Update(key, value common.Hash) (common.Hash, error) {
	root, err := t.update(t.root, 0, key, value)
	if err != nil {
		return t.root, err
	}
	t.root = root
	return root, nil
}

// Delete removes the given key from the tree and returns the new root.
func (t *Tree) Delete(key common.Hash) (common.Hash, error) {
	return t.Update(key, common.Hash{})
}

// Reset moves the tree to the given root, which must be the zero hash or
// the hash of a node present in the store.
func (t *Tree) Reset(root common.Hash) error {
	if !root.IsZero() {
		if _, err := t.store.Get(root); err != nil {
			if errors.Is(err, ErrNodeNotFound) {
				return fmt.Errorf("%w: %v", ErrUnknownRoot, root)
			}
			return err
		}
	}
	t.root = root
	return nil
}

// CreateProof creates a proof for the presence or absence of the given key
// in the current version of the tree.
func (t *Tree) CreateProof(key common.Hash) (Proof, error) {
	return t.CreateProofAt(t.root, key)
}

// CreateProofAt creates a proof for the given key relative to the given root.
func (t *Tree) CreateProofAt(root common.Hash, key common.Hash) (Proof, error) {
	res := Proof{}
	err := t.walk(root, key, func(sibling common.Hash) {
		res.Siblings = append(res.Siblings, sibling)
	}, func(leaf Node) {
		res.Leaf = &ProofLeaf{Key: leaf.Key(), Value: leaf.Value()}
	})
	if err != nil {
		return Proof{}, err
	}
	return res, nil
}

// Flush records the current root in the node store and flushes the store.
func (t *Tree) Flush() error {
	if err := t.store.SetRoot(t.root); err != nil {
		return err
	}
	return t.store.Flush()
}

// Close flushes the tree and releases the underlying store.
func (t *Tree) Close() error {
	return errors.Join(t.Flush(), t.store.Close())
}

func (t *Tree) load(hash common.Hash) (Node, error) {
	node, err := t.store.Get(hash)
	if err != nil {
		return Node{}, fmt.Errorf("failed to load node %v: %w", hash, err)
	}
	return node, nil
}

func (t *Tree) put(node Node) (common.Hash, error) {
	hash := node.Hash()
	if err := t.store.Set(hash, node); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// walk follows the path of the given key starting at the given root. The
// hash of the sibling of each visited branch is reported in root-to-leaf
// order. If the path ends in a leaf, it is reported as well, regardless of
// whether its key matches.
func (t *Tree) walk(root, key common.Hash, onSibling func(common.Hash), onLeaf func(Node)) error {
	cur := root
	for depth := 0; !cur.IsZero(); depth++ {
		node, err := t.load(cur)
		if err != nil {
			return err
		}
		if node.Kind() == LeafNode {
			onLeaf(node)
			return nil
		}
		if depth >= KeyBits {
			return fmt.Errorf("%w: branch %v below maximum depth", ErrCorruptNode, cur)
		}
		next, sibling := node.Left(), node.Right()
		if bit(key, depth) == 1 {
			next, sibling = sibling, next
		}
		if onSibling != nil {
			onSibling(sibling)
		}
		cur = next
	}
	return nil
}

// update sets the value of the key in the sub-tree rooted by the given node
// at the given depth and returns the hash of the resulting sub-tree.
func (t *Tree) update(hash common.Hash, depth int, key, value common.Hash) (common.Hash, error) {
	if hash.IsZero() {
		if value.IsZero() {
			return hash, nil
		}
		return t.put(NewLeaf(key, value))
	}

	node, err := t.load(hash)
	if err != nil {
		return common.Hash{}, err
	}

	if node.Kind() == LeafNode {
		if node.Key() == key {
			if node.Value() == value {
				return hash, nil
			}
			if value.IsZero() {
				return common.Hash{}, nil
			}
			return t.put(NewLeaf(key, value))
		}
		if value.IsZero() {
			return hash, nil
		}
		leaf, err := t.put(NewLeaf(key, value))
		if err != nil {
			return common.Hash{}, err
		}
		return t.split(depth, hash, node.Key(), leaf, key)
	}

	if depth >= KeyBits {
		return common.Hash{}, fmt.Errorf("%w: branch %v below maximum depth", ErrCorruptNode, hash)
	}
	left, right := node.Left(), node.Right()
	if bit(key, depth) == 0 {
		left, err = t.update(left, depth+1, key, value)
	} else {
		right, err = t.update(right, depth+1, key, value)
	}
	if err != nil {
		return common.Hash{}, err
	}
	if left == node.Left() && right == node.Right() {
		return hash, nil
	}
	return t.makeBranch(left, right)
}

// makeBranch combines two sub-trees. A branch holding a single leaf is
// replaced by that leaf so that every version of the tree has the shape
// determined by its content only.
func (t *Tree) makeBranch(left, right common.Hash) (common.Hash, error) {
	if left.IsZero() && right.IsZero() {
		return common.Hash{}, nil
	}
	if left.IsZero() || right.IsZero() {
		child := left
		if child.IsZero() {
			child = right
		}
		node, err := t.load(child)
		if err != nil {
			return common.Hash{}, err
		}
		if node.Kind() == LeafNode {
			return child, nil
		}
	}
	return t.put(NewBranch(left, right))
}

// split creates the sub-tree at the given depth holding exactly the two
// given leaves with distinct keys.
func (t *Tree) split(depth int, a common.Hash, aKey common.Hash, b common.Hash, bKey common.Hash) (common.Hash, error) {
	if depth >= KeyBits {
		return common.Hash{}, fmt.Errorf("%w: keys %v and %v can not be separated", ErrCorruptNode, aKey, bKey)
	}
	aBit, bBit := bit(aKey, depth), bit(bKey, depth)
	if aBit == bBit {
		child, err := t.split(depth+1, a, aKey, b, bKey)
		if err != nil {
			return common.Hash{}, err
		}
		if aBit == 0 {
			return t.put(NewBranch(child, common.Hash{}))
		}
		return t.put(NewBranch(common.Hash{}, child))
	}
	if aBit == 0 {
		return t.put(NewBranch(a, b))
	}
	return t.put(NewBranch(b, a))
}
