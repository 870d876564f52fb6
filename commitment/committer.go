// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package commitment folds the state of the engine into a sparse Merkle tree
// whose root commits to all balances, orders and best price levels, and
// creates proofs for individual entries relative to that root.
package commitment

import (
	"errors"
	"sync"

	"github.com/dexstate/statecommit/commitment/key"
	"github.com/dexstate/statecommit/commitment/leaf"
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/dexstate/statecommit/state"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Committer maintains the commitment tree of the engine state. All methods
// are safe for concurrent use; mutations are serialized while proofs may be
// created concurrently.
type Committer struct {
	mu   sync.RWMutex
	tree *smt.Tree
	log  *zap.Logger
}

// NewCommitter creates a committer maintaining the given tree. A nil logger
// disables logging.
func NewCommitter(tree *smt.Tree, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{tree: tree, log: logger}
}

// Root returns the current commitment root.
func (c *Committer) Root() common.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Root()
}

func commit[V leaf.Value[V]](c *Committer, key common.Hash, value V) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Update(key, value.Hash())
}

// CommitAccount updates the balance of a user in a currency. A balance of
// zero removes the account from the tree.
func (c *Committer) CommitAccount(user common.Address, currency common.Currency, account state.Account) (common.Hash, error) {
	return commit(c, key.AccountKey(user, currency), accountValue(account))
}

// CommitOrder adds or updates a resting order.
func (c *Committer) CommitOrder(order orderbook.Order) (common.Hash, error) {
	return commit(c, key.OrderKey(order.Id), orderValue(order))
}

// RemoveOrder removes an order that was filled or canceled.
func (c *Committer) RemoveOrder(id common.OrderId) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Delete(key.OrderKey(id))
}

// CommitPriceLevel updates the best level of one side of an order book. A
// size of zero removes the level.
func (c *Committer) CommitPriceLevel(symbol common.Symbol, side common.Side, size, price decimal.Decimal) (common.Hash, error) {
	return commit(c, key.OrderBookSideKey(symbol, side), leaf.PriceLevelValue{Size: size, BestPrice: price})
}

// CommitOrderBook updates the best levels of both sides of the given book as
// well as all of its orders. Orders no longer in the book have to be removed
// using RemoveOrder.
func (c *Committer) CommitOrderBook(symbol common.Symbol, book *orderbook.OrderBook) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.commitBook(symbol, book); err != nil {
		return c.tree.Root(), err
	}
	return c.tree.Root(), nil
}

func (c *Committer) commitBook(symbol common.Symbol, book *orderbook.OrderBook) error {
	for _, side := range []common.Side{common.Ask, common.Bid} {
		size, price, _ := book.BestLevel(side)
		value := leaf.PriceLevelValue{Size: size, BestPrice: price}
		if _, err := c.tree.Update(key.OrderBookSideKey(symbol, side), value.Hash()); err != nil {
			return err
		}
	}
	for _, order := range book.Orders() {
		if _, err := c.tree.Update(key.OrderKey(order.Id), orderValue(order).Hash()); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild replaces the content of the tree by the commitment of the given
// aggregate, as needed after loading a snapshot. On failure, the tree
// retains its previous root.
func (c *Committer) Rebuild(data *state.Data) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous := c.tree.Root()
	if err := c.rebuild(data); err != nil {
		return previous, errors.Join(err, c.tree.Reset(previous))
	}
	root := c.tree.Root()
	c.log.Info("rebuilt commitment",
		zap.Stringer("root", root),
		zap.Int("orderbooks", len(data.OrderBooks)),
		zap.Int("users", len(data.Accounts)),
	)
	return root, nil
}

func (c *Committer) rebuild(data *state.Data) error {
	if err := c.tree.Reset(common.Hash{}); err != nil {
		return err
	}
	for symbol, book := range data.OrderBooks {
		if err := c.commitBook(symbol, book); err != nil {
			return err
		}
	}
	for user, balances := range data.Accounts {
		for currency, account := range balances {
			if _, err := c.tree.Update(key.AccountKey(user, currency), accountValue(account).Hash()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush makes the current root and its nodes durable.
func (c *Committer) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Flush()
}

// Close flushes and closes the underlying tree.
func (c *Committer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Close()
}

// reset moves the tree to a previously committed root.
func (c *Committer) reset(root common.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Reset(root)
}

func accountValue(account state.Account) leaf.AccountValue {
	return leaf.AccountValue{Tradable: account.Tradable, Frozen: account.Frozen}
}

func orderValue(order orderbook.Order) leaf.OrderValue {
	return leaf.OrderValue{Owner: order.Owner, Amount: order.Amount, Price: order.Price, Side: order.Side}
}
