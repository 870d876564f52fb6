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
	"testing"

	"github.com/dexstate/statecommit/common"
)

func newPopulatedTree(t *testing.T, n int) *Tree {
	t.Helper()
	tree := newTestTree(t)
	for i := 0; i < n; i++ {
		if _, err := tree.Update(keyOf(i), valueOf(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return tree
}

func TestProof_MembershipProofsVerify(t *testing.T) {
	const N = 64
	tree := newPopulatedTree(t, N)
	root := tree.Root()
	for i := 0; i < N; i++ {
		proof, err := tree.CreateProof(keyOf(i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !VerifyProof(root, keyOf(i), valueOf(i), proof) {
			t.Errorf("proof for key %d does not verify", i)
		}
		if proof.Verify(root, keyOf(i), valueOf(i+1)) {
			t.Errorf("proof for key %d verifies wrong value", i)
		}
		if proof.Verify(root, keyOf(i), common.Hash{}) {
			t.Errorf("proof for key %d verifies absence", i)
		}
	}
}

func TestProof_NonMembershipProofsVerify(t *testing.T) {
	tree := newPopulatedTree(t, 64)
	root := tree.Root()
	for i := 64; i < 128; i++ {
		proof, err := tree.CreateProof(keyOf(i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, ok := proof.Value(root, keyOf(i))
		if !ok {
			t.Fatalf("proof for missing key %d is invalid", i)
		}
		if !value.IsZero() {
			t.Errorf("proof for missing key %d shows value %v", i, value)
		}
		if proof.Verify(root, keyOf(i), valueOf(i)) {
			t.Errorf("proof for missing key %d verifies a value", i)
		}
	}
}

func TestProof_EmptyTreeProvesAbsence(t *testing.T) {
	tree := newTestTree(t)
	proof, err := tree.CreateProof(keyOf(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !proof.Verify(common.Hash{}, keyOf(1), common.Hash{}) {
		t.Errorf("empty proof should verify absence in empty tree")
	}
}

func TestProof_TamperedProofsAreRejected(t *testing.T) {
	tree := newPopulatedTree(t, 32)
	root := tree.Root()
	key := keyOf(5)
	proof, err := tree.CreateProof(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proof.Siblings) == 0 {
		t.Fatalf("proof in populated tree should have siblings")
	}

	modified := Proof{Siblings: append([]common.Hash{}, proof.Siblings...), Leaf: proof.Leaf}
	modified.Siblings[0][0] ^= 1
	if modified.Verify(root, key, valueOf(5)) {
		t.Errorf("proof with modified sibling verifies")
	}

	truncated := Proof{Siblings: proof.Siblings[1:], Leaf: proof.Leaf}
	if truncated.Verify(root, key, valueOf(5)) {
		t.Errorf("truncated proof verifies")
	}

	otherLeaf := Proof{Siblings: proof.Siblings, Leaf: &ProofLeaf{Key: key, Value: valueOf(6)}}
	if otherLeaf.Verify(root, key, valueOf(6)) {
		t.Errorf("proof with modified leaf verifies")
	}

	if proof.Verify(root, keyOf(6), valueOf(5)) {
		t.Errorf("proof verifies for a different key")
	}
}

func TestProof_LeafWithZeroValueIsRejected(t *testing.T) {
	key := keyOf(1)
	proof := Proof{Leaf: &ProofLeaf{Key: key}}
	root := NewLeaf(key, common.Hash{}).Hash()
	if _, ok := proof.Value(root, key); ok {
		t.Errorf("proof with zero leaf value should be rejected")
	}
}

func TestProof_LeafOffPathIsRejected(t *testing.T) {
	a := common.Hash{}
	b := common.Hash{}
	b[0] = 0x80
	sibling := keyOf(1)
	// The leaf of b claimed in the left sub-tree, where a is located.
	proof := Proof{Siblings: []common.Hash{sibling}, Leaf: &ProofLeaf{Key: b, Value: valueOf(1)}}
	root := NewBranch(NewLeaf(b, valueOf(1)).Hash(), sibling).Hash()
	if _, ok := proof.Value(root, a); ok {
		t.Errorf("proof with leaf off the key's path should be rejected")
	}
}

func TestProof_TooDeepProofIsRejected(t *testing.T) {
	proof := Proof{Siblings: make([]common.Hash, KeyBits+1)}
	if _, ok := proof.Value(common.Hash{}, keyOf(1)); ok {
		t.Errorf("proof deeper than the key length should be rejected")
	}
}

func TestProof_EncodingRoundTrip(t *testing.T) {
	tree := newPopulatedTree(t, 40)
	for i := 0; i < 80; i++ {
		proof, err := tree.CreateProof(keyOf(i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := proof.MarshalBinary()
		if err != nil {
			t.Fatalf("failed to encode proof: %v", err)
		}
		var restored Proof
		if err := restored.UnmarshalBinary(data); err != nil {
			t.Fatalf("failed to decode proof: %v", err)
		}
		if !proof.Equal(restored) {
			t.Errorf("decoded proof differs, wanted %v, got %v", proof, restored)
		}
	}
}

func TestProof_EncodingOmitsZeroSiblings(t *testing.T) {
	a := common.Hash{}
	b := common.Hash{}
	b[31] = 1
	tree := newTestTree(t)
	for _, key := range []common.Hash{a, b} {
		if _, err := tree.Update(key, valueOf(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	proof, err := tree.CreateProof(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) >= KeyBits*32/4 {
		t.Errorf("encoding of sparse proof is too large: %d bytes", len(data))
	}
	var restored Proof
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restored.Verify(tree.Root(), a, valueOf(1)) {
		t.Errorf("decoded proof does not verify")
	}
}

func TestProof_CorruptEncodingsAreRejected(t *testing.T) {
	tree := newPopulatedTree(t, 16)
	proof, err := tree.CreateProof(keyOf(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := proof.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inputs := map[string][]byte{
		"empty":     {},
		"truncated": data[:len(data)-1],
		"garbage":   {0x01, 0x02, 0x03},
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			var restored Proof
			if err := restored.UnmarshalBinary(input); !errors.Is(err, ErrInvalidProof) {
				t.Errorf("expected ErrInvalidProof, got %v", err)
			}
		})
	}
}
