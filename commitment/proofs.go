// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package commitment

import (
	"fmt"

	"github.com/dexstate/statecommit/commitment/key"
	"github.com/dexstate/statecommit/commitment/leaf"
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/dexstate/statecommit/state"
	"github.com/shopspring/decimal"
)

// ErrClaimMismatch is returned when a proof is requested for a value that is
// not the one committed to the tree.
const ErrClaimMismatch = common.ConstError("claimed value is not committed")

// AccountProof shows the balance of a user in a currency.
type AccountProof struct {
	User     common.Address
	Currency common.Currency
	Account  state.Account
	Proof    smt.Proof
}

// Verify checks the proven balance against the given root.
func (p AccountProof) Verify(root common.Hash) bool {
	return p.Proof.Verify(root, key.AccountKey(p.User, p.Currency), accountValue(p.Account).Hash())
}

// OrderProof shows the presence of an order with the given content or, if
// Present is false, the absence of any order with the given id.
type OrderProof struct {
	Id      common.OrderId
	Present bool
	Order   leaf.OrderValue
	Proof   smt.Proof
}

// Verify checks the proven order against the given root.
func (p OrderProof) Verify(root common.Hash) bool {
	var value common.Hash
	if p.Present {
		value = p.Order.Hash()
	}
	return p.Proof.Verify(root, key.OrderKey(p.Id), value)
}

// PriceLevelProof shows the best level of one side of an order book. A size
// of zero proves the side to be empty.
type PriceLevelProof struct {
	Symbol common.Symbol
	Side   common.Side
	Level  leaf.PriceLevelValue
	Proof  smt.Proof
}

// Verify checks the proven level against the given root.
func (p PriceLevelProof) Verify(root common.Hash) bool {
	return p.Proof.Verify(root, key.OrderBookSideKey(p.Symbol, p.Side), p.Level.Hash())
}

// prove creates a proof for the given key relative to the current root and
// checks that the proof shows the claimed value.
func (c *Committer) prove(key, claim common.Hash) (smt.Proof, common.Hash, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	root := c.tree.Root()
	proof, err := c.tree.CreateProofAt(root, key)
	if err != nil {
		return smt.Proof{}, root, err
	}
	if got, _ := proof.Value(root, key); got != claim {
		return smt.Proof{}, root, fmt.Errorf("%w: committed %v, claimed %v", ErrClaimMismatch, got, claim)
	}
	return proof, root, nil
}

// ProveAccount creates a proof that the given balance is committed. The
// root the proof is valid for is returned alongside.
func (c *Committer) ProveAccount(user common.Address, currency common.Currency, account state.Account) (AccountProof, common.Hash, error) {
	proof, root, err := c.prove(key.AccountKey(user, currency), accountValue(account).Hash())
	if err != nil {
		return AccountProof{}, root, err
	}
	return AccountProof{User: user, Currency: currency, Account: account, Proof: proof}, root, nil
}

// ProveOrder creates a proof that the given order is committed. A nil order
// requests a proof that no order with the given id is committed.
func (c *Committer) ProveOrder(id common.OrderId, order *orderbook.Order) (OrderProof, common.Hash, error) {
	res := OrderProof{Id: id}
	var claim common.Hash
	if order != nil {
		if order.Id != id {
			return OrderProof{}, common.Hash{}, fmt.Errorf("%w: order %d claimed for id %d", ErrClaimMismatch, order.Id, id)
		}
		res.Present = true
		res.Order = orderValue(*order)
		claim = res.Order.Hash()
	}
	proof, root, err := c.prove(key.OrderKey(id), claim)
	if err != nil {
		return OrderProof{}, root, err
	}
	res.Proof = proof
	return res, root, nil
}

// ProvePriceLevel creates a proof that the given best level is committed for
// a side of an order book.
func (c *Committer) ProvePriceLevel(symbol common.Symbol, side common.Side, size, price decimal.Decimal) (PriceLevelProof, common.Hash, error) {
	level := leaf.PriceLevelValue{Size: size, BestPrice: price}
	proof, root, err := c.prove(key.OrderBookSideKey(symbol, side), level.Hash())
	if err != nil {
		return PriceLevelProof{}, root, err
	}
	return PriceLevelProof{Symbol: symbol, Side: side, Level: level, Proof: proof}, root, nil
}
