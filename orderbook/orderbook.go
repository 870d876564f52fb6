// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package orderbook provides the order books maintained by the matching
// core. An order book keeps resting orders of a symbol in price levels per
// side, each level holding its orders in arrival order.
package orderbook

import (
	"fmt"

	"github.com/dexstate/statecommit/common"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

const (
	ErrDuplicateOrder = common.ConstError("duplicate order")
	ErrUnknownOrder   = common.ConstError("unknown order")
	ErrInvalidOrder   = common.ConstError("invalid order")
)

// Order is a resting limit order.
type Order struct {
	Id     common.OrderId
	Owner  common.Address
	Side   common.Side
	Price  decimal.Decimal
	Amount decimal.Decimal
}

func (o *Order) Equal(other *Order) bool {
	return o.Id == other.Id &&
		o.Owner == other.Owner &&
		o.Side == other.Side &&
		o.Price.Equal(other.Price) &&
		o.Amount.Equal(other.Amount)
}

func (o *Order) String() string {
	return fmt.Sprintf("order(%d, %v, %v %v @ %v)", o.Id, o.Owner, o.Side, o.Amount, o.Price)
}

// Params are the trading parameters of an order book.
type Params struct {
	BaseScale         uint32
	QuoteScale        uint32
	TakerFee          decimal.Decimal
	MakerFee          decimal.Decimal
	MinAmount         decimal.Decimal
	MinVolume         decimal.Decimal
	EnableMarketOrder bool
}

func (p Params) Equal(other Params) bool {
	return p.BaseScale == other.BaseScale &&
		p.QuoteScale == other.QuoteScale &&
		p.TakerFee.Equal(other.TakerFee) &&
		p.MakerFee.Equal(other.MakerFee) &&
		p.MinAmount.Equal(other.MinAmount) &&
		p.MinVolume.Equal(other.MinVolume) &&
		p.EnableMarketOrder == other.EnableMarketOrder
}

// level is the list of orders resting at a single price.
type level struct {
	price  decimal.Decimal
	size   decimal.Decimal
	orders []*Order
}

func (l *level) remove(id common.OrderId) {
	for i, order := range l.orders {
		if order.Id == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return
		}
	}
}

// OrderBook holds the resting orders of a single symbol. It is not safe for
// concurrent use.
type OrderBook struct {
	Params
	orders map[common.OrderId]*Order
	asks   *btree.BTreeG[*level]
	bids   *btree.BTreeG[*level]
}

// New creates an empty order book with the given parameters.
func New(params Params) *OrderBook {
	return &OrderBook{
		Params: params,
		orders: map[common.OrderId]*Order{},
		// Asks are ordered by ascending, bids by descending price so that
		// the best level of each side comes first.
		asks: btree.NewBTreeG(func(a, b *level) bool {
			return a.price.LessThan(b.price)
		}),
		bids: btree.NewBTreeG(func(a, b *level) bool {
			return a.price.GreaterThan(b.price)
		}),
	}
}

func (b *OrderBook) side(side common.Side) *btree.BTreeG[*level] {
	if side == common.Bid {
		return b.bids
	}
	return b.asks
}

// Len returns the number of resting orders.
func (b *OrderBook) Len() int {
	return len(b.orders)
}

// Get looks up a resting order. The returned order must not be modified.
func (b *OrderBook) Get(id common.OrderId) (*Order, bool) {
	order, found := b.orders[id]
	return order, found
}

// Insert adds an order to the end of its price level.
func (b *OrderBook) Insert(order Order) error {
	if _, found := b.orders[order.Id]; found {
		return fmt.Errorf("%w: %d", ErrDuplicateOrder, order.Id)
	}
	if order.Side != common.Ask && order.Side != common.Bid {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidOrder, order.Side)
	}
	if !order.Amount.IsPositive() || !order.Price.IsPositive() {
		return fmt.Errorf("%w: amount %v and price %v must be positive", ErrInvalidOrder, order.Amount, order.Price)
	}
	tree := b.side(order.Side)
	lvl, found := tree.Get(&level{price: order.Price})
	if !found {
		lvl = &level{price: order.Price}
		tree.Set(lvl)
	}
	res := &order
	lvl.orders = append(lvl.orders, res)
	lvl.size = lvl.size.Add(order.Amount)
	b.orders[order.Id] = res
	return nil
}

// Remove takes a resting order off the book and returns it.
func (b *OrderBook) Remove(id common.OrderId) (Order, error) {
	order, found := b.orders[id]
	if !found {
		return Order{}, fmt.Errorf("%w: %d", ErrUnknownOrder, id)
	}
	tree := b.side(order.Side)
	lvl, _ := tree.Get(&level{price: order.Price})
	lvl.remove(id)
	lvl.size = lvl.size.Sub(order.Amount)
	if len(lvl.orders) == 0 {
		tree.Delete(lvl)
	}
	delete(b.orders, id)
	return *order, nil
}

// Reduce lowers the remaining amount of a resting order, as done when it is
// partially filled. An order reduced to zero is removed. The updated order
// is returned.
func (b *OrderBook) Reduce(id common.OrderId, by decimal.Decimal) (Order, error) {
	order, found := b.orders[id]
	if !found {
		return Order{}, fmt.Errorf("%w: %d", ErrUnknownOrder, id)
	}
	if by.IsNegative() || by.GreaterThan(order.Amount) {
		return Order{}, fmt.Errorf("%w: can not reduce amount %v by %v", ErrInvalidOrder, order.Amount, by)
	}
	if by.Equal(order.Amount) {
		res, err := b.Remove(id)
		res.Amount = decimal.Zero
		return res, err
	}
	lvl, _ := b.side(order.Side).Get(&level{price: order.Price})
	lvl.size = lvl.size.Sub(by)
	order.Amount = order.Amount.Sub(by)
	return *order, nil
}

// BestLevel returns the aggregate size and price of the best level of the
// given side. If the side has no orders, ok is false and zeros are returned.
func (b *OrderBook) BestLevel(side common.Side) (size, price decimal.Decimal, ok bool) {
	lvl, found := b.side(side).Min()
	if !found {
		return decimal.Zero, decimal.Zero, false
	}
	return lvl.size, lvl.price, true
}

// Depth returns the number of price levels of the given side.
func (b *OrderBook) Depth(side common.Side) int {
	return b.side(side).Len()
}

// Orders returns all resting orders, asks first, each side from the best
// level on and each level in arrival order.
func (b *OrderBook) Orders() []Order {
	res := make([]Order, 0, len(b.orders))
	for _, side := range []common.Side{common.Ask, common.Bid} {
		b.side(side).Scan(func(lvl *level) bool {
			for _, order := range lvl.orders {
				res = append(res, *order)
			}
			return true
		})
	}
	return res
}

// Equal reports whether both books have the same parameters and the same
// orders in the same arrival order.
func (b *OrderBook) Equal(other *OrderBook) bool {
	if !b.Params.Equal(other.Params) || b.Len() != other.Len() {
		return false
	}
	a, c := b.Orders(), other.Orders()
	for i := range a {
		if !a[i].Equal(&c[i]) {
			return false
		}
	}
	return true
}
