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

	"github.com/dexstate/statecommit/commitment"
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var (
	rootFlag = cli.StringFlag{
		Name:     "root",
		Usage:    "the 32-byte hex commitment root",
		Required: true,
	}
	proofFlag = cli.StringFlag{
		Name:     "proof",
		Usage:    "the hex encoded proof",
		Required: true,
	}
	tradableFlag = cli.StringFlag{
		Name:  "tradable",
		Usage: "the claimed tradable balance",
		Value: "0",
	}
	frozenFlag = cli.StringFlag{
		Name:  "frozen",
		Usage: "the claimed frozen balance",
		Value: "0",
	}
)

var verifyAccountCommand = cli.Command{
	Action: verifyAccount,
	Name:   "verify-account",
	Usage:  "verifies a proof for the balance of a user against a commitment root",
	Flags: []cli.Flag{
		&rootFlag,
		&userFlag,
		&currencyFlag,
		&tradableFlag,
		&frozenFlag,
		&proofFlag,
	},
}

func verifyAccount(ctx *cli.Context) error {
	root, err := common.HashFromHex(ctx.String(rootFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	user, err := common.AddressFromHex(ctx.String(userFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	tradable, err := decimal.NewFromString(ctx.String(tradableFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid tradable balance: %w", err)
	}
	frozen, err := decimal.NewFromString(ctx.String(frozenFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid frozen balance: %w", err)
	}
	encoded, err := hexutil.Decode(ctx.String(proofFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}
	currency, err := currencyOf(ctx)
	if err != nil {
		return err
	}
	var proof smt.Proof
	if err := proof.UnmarshalBinary(encoded); err != nil {
		return err
	}

	claim := commitment.AccountProof{
		User:     user,
		Currency: currency,
		Account:  state.Account{Tradable: tradable, Frozen: frozen},
		Proof:    proof,
	}
	if !claim.Verify(root) {
		return fmt.Errorf("%w: balance is not committed by root %v", smt.ErrInvalidProof, root)
	}
	fmt.Println("Proof is valid")
	return nil
}
