// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package smt implements the sparse Merkle tree committing to the engine's
// state. The tree maps 256-bit keys to 32-byte leaf hashes; keys not set hold
// the all-zero hash, which is also the hash of an empty sub-tree.
//
// The tree is binary and content-addressed. Its shape is canonical: a
// sub-tree without set keys is empty, a sub-tree with a single set key is
// represented by that key's leaf node regardless of its height, and any
// other sub-tree is a branch node. The root is therefore a pure function of
// the key/value mapping, independent of the order of updates.
//
// Nodes are never overwritten, so any root produced in the past remains
// readable and provable as long as the backing NodeStore retains its nodes.
//
// A Tree is not safe for concurrent mutation. Reads and proof generation
// may run concurrently with each other but not with updates.
package smt
