// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"math"

	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/dexstate/statecommit/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

var (
	userFlag = cli.StringFlag{
		Name:     "user",
		Usage:    "the 32-byte hex address of the user",
		Required: true,
	}
	currencyFlag = cli.Uint64Flag{
		Name:     "currency",
		Usage:    "the id of the currency",
		Required: true,
	}
	orderFlag = cli.Uint64Flag{
		Name:     "order",
		Usage:    "the id of the order",
		Required: true,
	}
)

var proveAccountCommand = cli.Command{
	Action: proveAccount,
	Name:   "prove-account",
	Usage:  "creates a proof for the balance of a user in a snapshot",
	Flags: []cli.Flag{
		&snapshotFlag,
		&userFlag,
		&currencyFlag,
		&verboseFlag,
	},
}

var proveOrderCommand = cli.Command{
	Action: proveOrder,
	Name:   "prove-order",
	Usage:  "creates a proof for the presence or absence of an order in a snapshot",
	Flags: []cli.Flag{
		&snapshotFlag,
		&orderFlag,
		&verboseFlag,
	},
}

func proveAccount(ctx *cli.Context) error {
	user, err := common.AddressFromHex(ctx.String(userFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	currency, err := currencyOf(ctx)
	if err != nil {
		return err
	}

	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, committer, err := loadSnapshot(ctx, logger)
	if err != nil {
		return err
	}
	var account state.Account
	store.View(func(data *state.Data) error {
		account = data.Accounts.Get(user, currency)
		return nil
	})
	proof, root, err := committer.ProveAccount(user, currency, account)
	if err != nil {
		return err
	}
	encoded, err := proof.Proof.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("Root:     %v\n", root)
	fmt.Printf("Tradable: %v\n", account.Tradable)
	fmt.Printf("Frozen:   %v\n", account.Frozen)
	fmt.Printf("Proof:    %s\n", hexutil.Encode(encoded))
	return nil
}

// currencyOf returns the currency named on the command line. Ids must fit the
// 32 bits of a currency.
func currencyOf(ctx *cli.Context) (common.Currency, error) {
	id := ctx.Uint64(currencyFlag.Name)
	if id > math.MaxUint32 {
		return 0, fmt.Errorf("invalid currency: %d exceeds the range of currency ids", id)
	}
	return common.Currency(id), nil
}

func proveOrder(ctx *cli.Context) error {
	id := common.OrderId(ctx.Uint64(orderFlag.Name))
	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, committer, err := loadSnapshot(ctx, logger)
	if err != nil {
		return err
	}
	var order *orderbook.Order
	store.View(func(data *state.Data) error {
		for _, book := range data.OrderBooks {
			if o, found := book.Get(id); found {
				copied := *o
				order = &copied
			}
		}
		return nil
	})
	proof, root, err := committer.ProveOrder(id, order)
	if err != nil {
		return err
	}
	encoded, err := proof.Proof.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("Root:  %v\n", root)
	if order == nil {
		fmt.Printf("Order: absent\n")
	} else {
		fmt.Printf("Order: %v\n", order)
	}
	fmt.Printf("Proof: %s\n", hexutil.Encode(encoded))
	return nil
}
