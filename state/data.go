// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/shopspring/decimal"
)

// Account is the balance of a user in a single currency.
type Account struct {
	Tradable decimal.Decimal
	Frozen   decimal.Decimal
}

func (a Account) Equal(other Account) bool {
	return a.Tradable.Equal(other.Tradable) && a.Frozen.Equal(other.Frozen)
}

// Accounts maps users to their balances per currency.
type Accounts map[common.Address]map[common.Currency]Account

// Get returns the balance of a user in a currency, which is zero for unknown
// users and currencies.
func (a Accounts) Get(user common.Address, currency common.Currency) Account {
	return a[user][currency]
}

// Set updates the balance of a user in a currency.
func (a Accounts) Set(user common.Address, currency common.Currency, account Account) {
	balances, found := a[user]
	if !found {
		balances = map[common.Currency]Account{}
		a[user] = balances
	}
	balances[currency] = account
}

func (a Accounts) Equal(other Accounts) bool {
	if len(a) != len(other) {
		return false
	}
	for user, balances := range a {
		others, found := other[user]
		if !found || len(balances) != len(others) {
			return false
		}
		for currency, account := range balances {
			o, found := others[currency]
			if !found || !account.Equal(o) {
				return false
			}
		}
	}
	return true
}

// Data is the aggregate of all order books and balances of the engine.
type Data struct {
	OrderBooks map[common.Symbol]*orderbook.OrderBook
	Accounts   Accounts
}

// NewData creates an empty aggregate.
func NewData() *Data {
	return &Data{
		OrderBooks: map[common.Symbol]*orderbook.OrderBook{},
		Accounts:   Accounts{},
	}
}

// Equal compares two aggregates structurally, independent of map order.
func (d *Data) Equal(other *Data) bool {
	if len(d.OrderBooks) != len(other.OrderBooks) {
		return false
	}
	for symbol, book := range d.OrderBooks {
		o, found := other.OrderBooks[symbol]
		if !found || !book.Equal(o) {
			return false
		}
	}
	return d.Accounts.Equal(other.Accounts)
}
