// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"sync"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestBlake2b_IsDeterministic(t *testing.T) {
	inputs := [][]byte{nil, {}, {0}, []byte("hello"), make([]byte, 1024)}
	for _, input := range inputs {
		if want, got := Blake2b(input), Blake2b(input); want != got {
			t.Errorf("hash of %x not deterministic: %v vs %v", input, want, got)
		}
	}
}

func TestBlake2b_HashesConcatenationOfParts(t *testing.T) {
	a := []byte("sparse")
	b := []byte("merkle")
	c := []byte("tree")
	joined := bytes.Join([][]byte{a, b, c}, nil)
	if want, got := Blake2b(joined), Blake2b(a, b, c); want != got {
		t.Errorf("parts are not hashed as concatenation: wanted %v, got %v", want, got)
	}
	if want, got := Blake2b(joined), Blake2b(a, nil, b, []byte{}, c); want != got {
		t.Errorf("empty parts should not affect the hash: wanted %v, got %v", want, got)
	}
}

func TestBlake2b_EmptyInputIsNotZero(t *testing.T) {
	if Blake2b().IsZero() {
		t.Errorf("hash of empty input must not be the zero hash")
	}
}

func TestBlake2b_IsPersonalized(t *testing.T) {
	data := []byte("some data")
	plain := Hash(blake2b.Sum256(data))
	if plain == Blake2b(data) {
		t.Errorf("personalized hash must differ from plain BLAKE2b-256")
	}
}

func TestBlake2b_DifferentInputsProduceDifferentHashes(t *testing.T) {
	seen := map[Hash]int{}
	for i := 0; i < 1000; i++ {
		h := Blake2b(OrderId(i).ToBytes())
		if j, found := seen[h]; found {
			t.Fatalf("collision between inputs %d and %d", i, j)
		}
		seen[h] = i
	}
}

func TestBlake2b_CanBeUsedConcurrently(t *testing.T) {
	want := Blake2b([]byte("concurrent"))
	var wg sync.WaitGroup
	errs := make(chan Hash, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Blake2b([]byte("concurrent")); got != want {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("unexpected concurrent hash result, wanted %v, got %v", want, got)
	}
}

// Reference digests of BLAKE2b-256 with personalization "sparsemerkletree",
// as produced by other implementations of the commitment.
func TestBlake2b_MatchesKnownAnswers(t *testing.T) {
	tests := []struct {
		input []byte
		want  string
	}{
		{nil, "0x564c7100b6fd6ba1faa5e658ddee747d41f70c2979b76bf03801c5685b31edfc"},
		{[]byte("abc"), "0x616c2078629d8c6e813da93d46ad849fd2d939820cd0fe2c35d4706b1882f519"},
	}
	for _, test := range tests {
		want, err := HashFromHex(test.want)
		if err != nil {
			t.Fatalf("invalid reference digest: %v", err)
		}
		if got := Blake2b(test.input); want != got {
			t.Errorf("unexpected digest of %q, wanted %v, got %v", test.input, want, got)
		}
	}
	// Splitting the input into parts does not change the digest.
	want, _ := HashFromHex(tests[1].want)
	if got := Blake2b([]byte("a"), nil, []byte("bc")); want != got {
		t.Errorf("unexpected digest of parts, wanted %v, got %v", want, got)
	}
}
