// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package key derives the 256-bit tree keys under which the commitment tree
// stores price levels, accounts and orders.
//
// The three domains are separated by the shape of their derivation: order
// book side keys hash twice and offset the side tag by two, account keys hash
// an address and a currency once, order keys hash a bare order id. All
// integers are encoded little-endian.
package key

import (
	"encoding/binary"

	"github.com/dexstate/statecommit/common"
)

// sideTagOffset shifts side tags away from the small integers used as
// currency ids and side values elsewhere.
const sideTagOffset = 2

// SymbolKey returns the hash identifying an order book.
func SymbolKey(symbol common.Symbol) common.Hash {
	return common.Blake2b(symbol.Base.ToBytes(), symbol.Quote.ToBytes())
}

// OrderBookSideKey returns the tree key of the best price level on one side
// of the given order book.
func OrderBookSideKey(symbol common.Symbol, side common.Side) common.Hash {
	symbolKey := SymbolKey(symbol)
	var tag [4]byte
	binary.LittleEndian.PutUint32(tag[:], uint32(side)+sideTagOffset)
	return common.Blake2b(symbolKey[:], tag[:])
}

// AccountKey returns the tree key of a user's balance in one currency.
func AccountKey(address common.Address, currency common.Currency) common.Hash {
	return common.Blake2b(address[:], currency.ToBytes())
}

// OrderKey returns the tree key of an order.
func OrderKey(id common.OrderId) common.Hash {
	return common.Blake2b(id.ToBytes())
}
