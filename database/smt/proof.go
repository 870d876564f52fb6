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
	"math/bits"

	"github.com/dexstate/statecommit/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Proof is a Merkle proof for the value of a single key. It lists the hashes
// of the siblings along the key's path, starting at the root, and the leaf
// the path ends in, if any. A path ending in an empty sub-tree or in a leaf of
// a different key proves the absence of the key.
type Proof struct {
	Siblings []common.Hash
	Leaf     *ProofLeaf
}

// ProofLeaf is the leaf a proof's path ends in.
type ProofLeaf struct {
	Key   common.Hash
	Value common.Hash
}

// VerifyProof checks that the given proof shows that the key has the given
// value in the tree with the given root. A zero value is verified by a proof
// of absence.
func VerifyProof(root, key, value common.Hash, proof Proof) bool {
	return proof.Verify(root, key, value)
}

// Verify checks that this proof shows that the key has the given value in
// the tree with the given root. Malformed proofs are never accepted.
func (p Proof) Verify(root, key, value common.Hash) bool {
	got, ok := p.Value(root, key)
	return ok && got == value
}

// Value extracts the value of the given key proven by this proof relative to
// the given root. The zero hash is returned for keys proven to be absent. The
// second result is false if the proof is not valid for the root and key.
func (p Proof) Value(root, key common.Hash) (common.Hash, bool) {
	depth := len(p.Siblings)
	if depth > KeyBits {
		return common.Hash{}, false
	}

	var hash, value common.Hash
	if p.Leaf != nil {
		// Stored leaves never hold zero values and are located on the path
		// of their key.
		if p.Leaf.Value.IsZero() || !sharesPrefix(p.Leaf.Key, key, depth) {
			return common.Hash{}, false
		}
		hash = NewLeaf(p.Leaf.Key, p.Leaf.Value).Hash()
		if p.Leaf.Key == key {
			value = p.Leaf.Value
		}
	}

	for i := depth - 1; i >= 0; i-- {
		if bit(key, i) == 0 {
			hash = NewBranch(hash, p.Siblings[i]).Hash()
		} else {
			hash = NewBranch(p.Siblings[i], hash).Hash()
		}
	}
	if hash != root {
		return common.Hash{}, false
	}
	return value, true
}

// Equal reports whether both proofs have the same content.
func (p Proof) Equal(other Proof) bool {
	if len(p.Siblings) != len(other.Siblings) {
		return false
	}
	for i := range p.Siblings {
		if p.Siblings[i] != other.Siblings[i] {
			return false
		}
	}
	if p.Leaf == nil || other.Leaf == nil {
		return p.Leaf == nil && other.Leaf == nil
	}
	return *p.Leaf == *other.Leaf
}

func (p Proof) String() string {
	if p.Leaf == nil {
		return fmt.Sprintf("proof(depth=%d, empty)", len(p.Siblings))
	}
	return fmt.Sprintf("proof(depth=%d, leaf %v -> %v)", len(p.Siblings), p.Leaf.Key, p.Leaf.Value)
}

// encodedProof is the wire form of a proof. Most siblings near the bottom of
// a sparse tree are empty, so zero siblings are omitted and marked in a
// bitmap of present siblings instead.
type encodedProof struct {
	Depth    uint64
	Bitmap   []byte
	Siblings []common.Hash
	Leaf     []common.Hash
}

// MarshalBinary encodes the proof in a compact RLP based format.
func (p Proof) MarshalBinary() ([]byte, error) {
	enc := encodedProof{
		Depth:  uint64(len(p.Siblings)),
		Bitmap: make([]byte, (len(p.Siblings)+7)/8),
	}
	for i, sibling := range p.Siblings {
		if sibling.IsZero() {
			continue
		}
		enc.Bitmap[i/8] |= 1 << (7 - i%8)
		enc.Siblings = append(enc.Siblings, sibling)
	}
	if p.Leaf != nil {
		enc.Leaf = []common.Hash{p.Leaf.Key, p.Leaf.Value}
	}
	return rlp.EncodeToBytes(&enc)
}

// UnmarshalBinary decodes a proof produced by MarshalBinary. Inputs that are
// not a canonical encoding of a proof are rejected with ErrInvalidProof.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var enc encodedProof
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if enc.Depth > KeyBits {
		return fmt.Errorf("%w: depth %d exceeds key length", ErrInvalidProof, enc.Depth)
	}
	depth := int(enc.Depth)
	if len(enc.Bitmap) != (depth+7)/8 {
		return fmt.Errorf("%w: bitmap of %d bytes for depth %d", ErrInvalidProof, len(enc.Bitmap), depth)
	}
	present := 0
	for _, b := range enc.Bitmap {
		present += bits.OnesCount8(b)
	}
	if depth%8 != 0 && enc.Bitmap[len(enc.Bitmap)-1]&(0xff>>(depth%8)) != 0 {
		return fmt.Errorf("%w: bitmap marks siblings beyond depth", ErrInvalidProof)
	}
	if present != len(enc.Siblings) {
		return fmt.Errorf("%w: bitmap marks %d siblings, got %d", ErrInvalidProof, present, len(enc.Siblings))
	}
	if len(enc.Leaf) != 0 && len(enc.Leaf) != 2 {
		return fmt.Errorf("%w: leaf of %d elements", ErrInvalidProof, len(enc.Leaf))
	}

	res := Proof{}
	if depth > 0 {
		res.Siblings = make([]common.Hash, depth)
	}
	next := 0
	for i := 0; i < depth; i++ {
		if enc.Bitmap[i/8]&(1<<(7-i%8)) == 0 {
			continue
		}
		if enc.Siblings[next].IsZero() {
			return fmt.Errorf("%w: zero sibling marked as present", ErrInvalidProof)
		}
		res.Siblings[i] = enc.Siblings[next]
		next++
	}
	if len(enc.Leaf) == 2 {
		res.Leaf = &ProofLeaf{Key: enc.Leaf[0], Value: enc.Leaf[1]}
	}
	*p = res
	return nil
}
