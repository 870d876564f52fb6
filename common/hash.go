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
	"hash"
	"sync"

	"github.com/dchest/blake2b"
)

// Personalization is the BLAKE2b personalization tag shared by all leaf and
// key derivations as well as the tree's node hashing.
const Personalization = "sparsemerkletree"

var blake2bConfig = blake2b.Config{
	Size:   32,
	Person: []byte(Personalization),
}

var blake2bHasherPool = sync.Pool{New: func() any { return newBlake2bHasher() }}

func newBlake2bHasher() hash.Hash {
	hasher, err := blake2b.New(&blake2bConfig)
	if err != nil {
		// The configuration is static, so this can only fail on a programming error.
		panic(err)
	}
	return hasher
}

// Blake2b computes the 32-byte personalized BLAKE2b hash of the concatenation
// of the given byte slices. The hash is computed with an empty key.
func Blake2b(parts ...[]byte) Hash {
	hasher := blake2bHasherPool.Get().(hash.Hash)
	hasher.Reset()
	for _, part := range parts {
		hasher.Write(part)
	}
	var res Hash
	hasher.Sum(res[:0])
	blake2bHasherPool.Put(hasher)
	return res
}
