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
	"sort"

	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/state"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a snapshot and its commitment root",
	Flags: []cli.Flag{
		&snapshotFlag,
		&verboseFlag,
	},
}

func getInfo(ctx *cli.Context) error {
	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, committer, err := loadSnapshot(ctx, logger)
	if err != nil {
		return err
	}
	return store.View(func(data *state.Data) error {
		symbols := maps.Keys(data.OrderBooks)
		sort.Slice(symbols, func(i, j int) bool { return symbols[i].Compare(symbols[j]) < 0 })
		for _, symbol := range symbols {
			book := data.OrderBooks[symbol]
			fmt.Printf("Order book %v: %d orders", symbol, book.Len())
			for _, side := range []common.Side{common.Ask, common.Bid} {
				if size, price, ok := book.BestLevel(side); ok {
					fmt.Printf(", best %v %v @ %v", side, size, price)
				}
			}
			fmt.Println()
		}
		accounts := 0
		for _, balances := range data.Accounts {
			accounts += len(balances)
		}
		fmt.Printf("Users: %d, accounts: %d\n", len(data.Accounts), accounts)
		fmt.Printf("Commitment root: %v\n", committer.Root())
		return nil
	})
}
