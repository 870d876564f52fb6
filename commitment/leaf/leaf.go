// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package leaf computes the leaf hashes committed to the state tree for the
// three kinds of committed values: the best price level of an order book
// side, an individual order, and a user's balance in one currency.
//
// Price levels and accounts holding nothing hash to the all-zero hash, the
// tree's empty leaf, so they occupy no space in the tree. Orders have no such
// elision: every order value, including the zero value, hashes to a non-zero
// leaf. Removing an order from the tree is done by writing the zero hash.
package leaf

import (
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/common/amount"
	"github.com/shopspring/decimal"
)

// Value is implemented by all committed leaf values. Zero returns the value
// held by keys not set in the tree.
type Value[V any] interface {
	Hash() common.Hash
	Zero() V
}

var (
	_ Value[PriceLevelValue] = PriceLevelValue{}
	_ Value[OrderValue]      = OrderValue{}
	_ Value[AccountValue]    = AccountValue{}
)

// PriceLevelValue is the aggregate committed for one side of an order book:
// the total amount resting at the best price and the best price itself.
type PriceLevelValue struct {
	Size      decimal.Decimal
	BestPrice decimal.Decimal
}

func (v PriceLevelValue) Hash() common.Hash {
	return PriceLevelHash(v.Size, v.BestPrice)
}

func (PriceLevelValue) Zero() PriceLevelValue {
	return PriceLevelValue{}
}

// PriceLevelHash hashes the canonical text of size and best price. An empty
// level, one with a size of zero, hashes to the zero hash regardless of price.
func PriceLevelHash(size, bestPrice decimal.Decimal) common.Hash {
	if size.IsZero() {
		return common.Hash{}
	}
	return common.Blake2b(amount.Bytes(size), amount.Bytes(bestPrice))
}

// OrderValue is the committed content of a single active order.
type OrderValue struct {
	Owner  common.Address
	Amount decimal.Decimal
	Price  decimal.Decimal
	Side   common.Side
}

func (v OrderValue) Hash() common.Hash {
	return OrderHash(v.Owner, v.Amount, v.Price, v.Side)
}

func (OrderValue) Zero() OrderValue {
	return OrderValue{}
}

// OrderHash hashes the owner, the canonical text of amount and price, and the
// side as 4 little-endian bytes, in this order.
func OrderHash(owner common.Address, amountValue, price decimal.Decimal, side common.Side) common.Hash {
	return common.Blake2b(owner[:], amount.Bytes(amountValue), amount.Bytes(price), side.ToBytes())
}

// AccountValue is the committed balance of a user in one currency.
type AccountValue struct {
	Tradable decimal.Decimal
	Frozen   decimal.Decimal
}

func (v AccountValue) Hash() common.Hash {
	return AccountHash(v.Tradable, v.Frozen)
}

func (AccountValue) Zero() AccountValue {
	return AccountValue{}
}

// AccountHash hashes the canonical text of the tradable and the frozen
// balance. An account with both balances zero hashes to the zero hash.
func AccountHash(tradable, frozen decimal.Decimal) common.Hash {
	if tradable.IsZero() && frozen.IsZero() {
		return common.Hash{}
	}
	return common.Blake2b(amount.Bytes(tradable), amount.Bytes(frozen))
}
