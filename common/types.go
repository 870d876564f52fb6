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
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash is a 32-byte opaque value (H256). It is used as a tree key, as a tree
// node or leaf hash, and as the identity of an account owner.
type Hash [32]byte

// IsZero reports whether all bytes of the hash are zero. The all-zero hash is
// the canonical empty leaf of the commitment tree.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Compare orders hashes lexicographically by their bytes.
func (h *Hash) Compare(other *Hash) int {
	return bytes.Compare(h[:], other[:])
}

// HashFromBytes converts a 32-byte slice into a hash.
func HashFromBytes(data []byte) (Hash, error) {
	var res Hash
	if len(data) != len(res) {
		return res, fmt.Errorf("invalid hash length, wanted %d, got %d", len(res), len(data))
	}
	copy(res[:], data)
	return res, nil
}

// HashFromHex parses a 0x-prefixed hex string of 32 bytes.
func HashFromHex(s string) (Hash, error) {
	data, err := hexutil.Decode(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(data)
}

func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

func (h *Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash", input, h[:])
}

// Address identifies a user. It is a 32-byte identity hash and is used both as
// the owner of orders and as the key of a user's balance sheet.
type Address [32]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Compare orders addresses lexicographically by their bytes.
func (a *Address) Compare(other *Address) int {
	return bytes.Compare(a[:], other[:])
}

// AddressFromHex parses a 0x-prefixed hex string of 32 bytes.
func AddressFromHex(s string) (Address, error) {
	hash, err := HashFromHex(s)
	return Address(hash), err
}

func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

func (a *Address) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Address", input, a[:])
}

// Currency identifies a tradable asset.
type Currency uint32

// ToBytes returns the little-endian encoding of the currency id.
func (c Currency) ToBytes() []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), uint32(c))
}

// OrderId identifies an order across all order books.
type OrderId uint64

// ToBytes returns the little-endian encoding of the order id.
func (id OrderId) ToBytes() []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), uint64(id))
}

// Symbol identifies an order book by its base and quote currency.
type Symbol struct {
	Base  Currency
	Quote Currency
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d/%d", s.Base, s.Quote)
}

// Compare orders symbols by base currency first and quote currency second.
func (s Symbol) Compare(other Symbol) int {
	switch {
	case s.Base < other.Base:
		return -1
	case s.Base > other.Base:
		return 1
	case s.Quote < other.Quote:
		return -1
	case s.Quote > other.Quote:
		return 1
	}
	return 0
}

// Side distinguishes the ask and the bid side of an order book.
type Side uint32

const (
	Ask Side = 0
	Bid Side = 1
)

func (s Side) String() string {
	switch s {
	case Ask:
		return "ask"
	case Bid:
		return "bid"
	}
	return fmt.Sprintf("side(%d)", uint32(s))
}

// Opposite returns the side orders of this side are matched against.
func (s Side) Opposite() Side {
	if s == Ask {
		return Bid
	}
	return Ask
}

// ToBytes returns the 4-byte little-endian encoding of the side tag.
func (s Side) ToBytes() []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), uint32(s))
}
