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
	"os"
	"runtime/pprof"

	"github.com/dexstate/statecommit/commitment"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/state"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	snapshotFlag = cli.StringFlag{
		Name:     "snapshot",
		Usage:    "the snapshot file to be inspected",
		Required: true,
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
)

func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if !ctx.Bool(verboseFlag.Name) {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}

// loadSnapshot loads the snapshot named on the command line and computes its
// commitment in a tree kept in memory.
func loadSnapshot(ctx *cli.Context, logger *zap.Logger) (*state.Store, *commitment.Committer, error) {
	path := ctx.String(snapshotFlag.Name)
	logger.Debug("loading snapshot", zap.String("path", path))
	store, err := state.LoadStore(path, logger)
	if err != nil {
		return nil, nil, err
	}
	committer := commitment.NewCommitter(smt.NewTree(smt.NewMemoryStore()), logger)
	err = store.View(func(data *state.Data) error {
		_, err := committer.Rebuild(data)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return store, committer, nil
}

func StartCPUProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func StopCPUProfile() {
	pprof.StopCPUProfile()
}
