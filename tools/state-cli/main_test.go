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
	"errors"
	"path/filepath"
	"testing"

	"github.com/dexstate/statecommit/commitment"
	"github.com/dexstate/statecommit/common"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/orderbook"
	"github.com/dexstate/statecommit/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

func writeTestSnapshot(t *testing.T) (string, common.Hash) {
	t.Helper()
	data := state.NewData()
	book := orderbook.New(orderbook.Params{BaseScale: 3, QuoteScale: 3})
	err := book.Insert(orderbook.Order{Id: 1, Owner: common.Address{1}, Side: common.Ask, Price: decimal.NewFromInt(2), Amount: decimal.NewFromInt(3)})
	if err != nil {
		t.Fatalf("failed to insert order: %v", err)
	}
	data.OrderBooks[common.Symbol{Base: 101, Quote: 100}] = book
	data.Accounts.Set(common.Address{1}, 100, state.Account{Tradable: decimal.NewFromInt(10), Frozen: decimal.Zero})

	path := filepath.Join(t.TempDir(), "snapshot")
	if err := state.SaveFile(path, data); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
	root, err := commitment.NewCommitter(smt.NewTree(smt.NewMemoryStore()), nil).Rebuild(data)
	if err != nil {
		t.Fatalf("failed to compute root: %v", err)
	}
	return path, root
}

func run(args ...string) error {
	return newApp().Run(append([]string{"state"}, args...))
}

func TestInfo_RunsOnSnapshot(t *testing.T) {
	path, _ := writeTestSnapshot(t)
	if err := run("info", "--snapshot", path); err != nil {
		t.Errorf("info failed: %v", err)
	}
}

func TestInfo_FailsOnMissingSnapshot(t *testing.T) {
	if err := run("info", "--snapshot", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("info should fail on missing snapshot")
	}
}

func TestCommit_WritesTreeToNodeStore(t *testing.T) {
	path, want := writeTestSnapshot(t)
	dir := filepath.Join(t.TempDir(), "nodes")
	for _, config := range []smt.StoreConfig{smt.LevelDbConfig, smt.PebbleConfig} {
		dir := filepath.Join(dir, config.Name)
		if err := run("commit", "--snapshot", path, "--node-dir", dir, "--node-store", config.Name); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
		nodes, err := smt.OpenNodeStore(config, dir)
		if err != nil {
			t.Fatalf("failed to open node store: %v", err)
		}
		tree, err := smt.OpenTree(nodes)
		if err != nil {
			t.Fatalf("failed to open tree: %v", err)
		}
		if got := tree.Root(); want != got {
			t.Errorf("unexpected root in node store, wanted %v, got %v", want, got)
		}
		if err := tree.Close(); err != nil {
			t.Errorf("failed to close tree: %v", err)
		}
	}
}

func TestCommit_RejectsUnknownStore(t *testing.T) {
	path, _ := writeTestSnapshot(t)
	err := run("commit", "--snapshot", path, "--node-dir", t.TempDir(), "--node-store", "unknown")
	if err == nil {
		t.Errorf("commit should fail for unknown node store")
	}
}

func TestProveAccount_RunsOnSnapshot(t *testing.T) {
	path, _ := writeTestSnapshot(t)
	user := common.Address{1}
	if err := run("prove-account", "--snapshot", path, "--user", user.String(), "--currency", "100"); err != nil {
		t.Errorf("prove-account failed: %v", err)
	}
	if err := run("prove-order", "--snapshot", path, "--order", "1"); err != nil {
		t.Errorf("prove-order failed: %v", err)
	}
	if err := run("prove-order", "--snapshot", path, "--order", "2"); err != nil {
		t.Errorf("prove-order for absent order failed: %v", err)
	}
}

func TestVerifyAccount_ChecksProofs(t *testing.T) {
	path, root := writeTestSnapshot(t)
	store, err := state.LoadStore(path, nil)
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	committer := commitment.NewCommitter(smt.NewTree(smt.NewMemoryStore()), nil)
	store.View(func(data *state.Data) error {
		_, err := committer.Rebuild(data)
		return err
	})
	user := common.Address{1}
	proof, _, err := committer.ProveAccount(user, 100, state.Account{Tradable: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("failed to create proof: %v", err)
	}
	encoded, err := proof.Proof.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode proof: %v", err)
	}
	args := []string{"verify-account", "--root", root.String(), "--user", user.String(), "--currency", "100", "--proof", hexutil.Encode(encoded)}

	if err := run(append(args, "--tradable", "10.0")...); err != nil {
		t.Errorf("valid proof rejected: %v", err)
	}
	if err := run(append(args, "--tradable", "11")...); !errors.Is(err, smt.ErrInvalidProof) {
		t.Errorf("expected ErrInvalidProof for wrong balance, got %v", err)
	}
	if err := run("verify-account", "--root", root.String(), "--user", user.String(), "--currency", "100", "--proof", "0x01"); !errors.Is(err, smt.ErrInvalidProof) {
		t.Errorf("expected ErrInvalidProof for malformed proof, got %v", err)
	}
	// 2^32+100 must not be truncated to currency 100
	wide := []string{"verify-account", "--root", root.String(), "--user", user.String(), "--currency", "4294967396", "--tradable", "10", "--proof", hexutil.Encode(encoded)}
	if err := run(wide...); err == nil {
		t.Errorf("currency beyond 32 bits should be rejected")
	}
}

func TestProveAccount_RejectsCurrencyBeyondRange(t *testing.T) {
	path, _ := writeTestSnapshot(t)
	user := common.Address{1}
	if err := run("prove-account", "--snapshot", path, "--user", user.String(), "--currency", "4294967396"); err == nil {
		t.Errorf("currency beyond 32 bits should be rejected")
	}
}
