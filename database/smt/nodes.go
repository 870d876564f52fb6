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

// KeyBits is the number of bits of a tree key and thus the maximum depth of
// the tree.
const KeyBits = 256

// NodeKind distinguishes the two kinds of nodes stored in a tree. Empty
// sub-trees are not stored; they are represented by the zero hash.
type NodeKind byte

const (
	LeafNode   NodeKind = 0
	BranchNode NodeKind = 1
)

func (k NodeKind) String() string {
	switch k {
	case LeafNode:
		return "leaf"
	case BranchNode:
		return "branch"
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// encodedNodeSize is the size of a node's binary encoding: its kind followed
// by two 32-byte hashes.
const encodedNodeSize = 1 + 2*32

// Node is a leaf, holding a key and its value, or a branch, holding the
// hashes of its left and right child.
type Node struct {
	kind   NodeKind
	first  common.Hash
	second common.Hash
}

// NewLeaf creates a leaf node storing the given value under the given key.
func NewLeaf(key, value common.Hash) Node {
	return Node{kind: LeafNode, first: key, second: value}
}

// NewBranch creates a branch node referencing the given children.
func NewBranch(left, right common.Hash) Node {
	return Node{kind: BranchNode, first: left, second: right}
}

func (n Node) Kind() NodeKind {
	return n.kind
}

// Key is the key of a leaf node.
func (n Node) Key() common.Hash {
	return n.first
}

// Value is the value of a leaf node.
func (n Node) Value() common.Hash {
	return n.second
}

// Left is the hash of the left child of a branch node.
func (n Node) Left() common.Hash {
	return n.first
}

// Right is the hash of the right child of a branch node.
func (n Node) Right() common.Hash {
	return n.second
}

// Hash computes the hash identifying this node. The node kind is prefixed to
// the hashed content so leaves and branches can never share a hash.
func (n Node) Hash() common.Hash {
	return common.Blake2b([]byte{byte(n.kind)}, n.first[:], n.second[:])
}

// Encode produces the binary form of the node used by node stores.
func (n Node) Encode() []byte {
	res := make([]byte, encodedNodeSize)
	res[0] = byte(n.kind)
	copy(res[1:33], n.first[:])
	copy(res[33:], n.second[:])
	return res
}

func (n Node) String() string {
	if n.kind == LeafNode {
		return fmt.Sprintf("leaf(%v -> %v)", n.first, n.second)
	}
	return fmt.Sprintf("branch(%v, %v)", n.first, n.second)
}

// DecodeNode parses a node encoded by Encode.
func DecodeNode(data []byte) (Node, error) {
	if len(data) != encodedNodeSize {
		return Node{}, fmt.Errorf("%w: invalid encoded length %d", ErrCorruptNode, len(data))
	}
	kind := NodeKind(data[0])
	if kind != LeafNode && kind != BranchNode {
		return Node{}, fmt.Errorf("%w: unknown node kind %d", ErrCorruptNode, data[0])
	}
	res := Node{kind: kind}
	copy(res.first[:], data[1:33])
	copy(res.second[:], data[33:])
	return res, nil
}

// bit returns the bit of the key at the given depth, counting from the most
// significant bit of the first byte.
func bit(key common.Hash, depth int) byte {
	return (key[depth/8] >> (7 - depth%8)) & 1
}

// sharesPrefix reports whether the first length bits of a and b are equal.
func sharesPrefix(a, b common.Hash, length int) bool {
	for i := 0; i < length; i++ {
		if bit(a, i) != bit(b, i) {
			return false
		}
	}
	return true
}
