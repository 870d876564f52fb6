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
	"fmt"
	"time"

	"github.com/dexstate/statecommit/commitment"
	"github.com/dexstate/statecommit/database/smt"
	"github.com/dexstate/statecommit/state"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
	nodeDirFlag = cli.StringFlag{
		Name:     "node-dir",
		Usage:    "the directory of the node store receiving the commitment tree",
		Required: true,
	}
	nodeStoreFlag = cli.StringFlag{
		Name:  "node-store",
		Usage: "the node store configuration, one of memory, leveldb or pebble",
		Value: smt.LevelDbConfig.Name,
	}
)

var commitCommand = cli.Command{
	Action: commit,
	Name:   "commit",
	Usage:  "writes the commitment tree of a snapshot into a node store",
	Flags: []cli.Flag{
		&snapshotFlag,
		&nodeDirFlag,
		&nodeStoreFlag,
		&cpuProfilingFlag,
		&verboseFlag,
	},
}

func commit(ctx *cli.Context) (err error) {
	logger, err := newLogger(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	profileTarget := ctx.String(cpuProfilingFlag.Name)
	if len(profileTarget) != 0 {
		if err := StartCPUProfile(profileTarget); err != nil {
			return err
		}
		defer StopCPUProfile()
	}

	configName := ctx.String(nodeStoreFlag.Name)
	config, found := smt.GetConfigByName(configName)
	if !found {
		return fmt.Errorf("unknown node store configuration %q", configName)
	}

	store, err := state.LoadStore(ctx.String(snapshotFlag.Name), logger)
	if err != nil {
		return err
	}

	dir := ctx.String(nodeDirFlag.Name)
	logger.Info("opening node store", zap.String("dir", dir), zap.String("config", config.Name))
	nodes, err := smt.OpenNodeStore(config, dir)
	if err != nil {
		return err
	}
	tree, err := smt.OpenTree(nodes)
	if err != nil {
		return errors.Join(err, nodes.Close())
	}
	committer := commitment.NewCommitter(tree, logger)
	defer func() {
		err = errors.Join(err, committer.Close())
	}()
	fmt.Printf("Previous root: %v\n", committer.Root())

	start := time.Now()
	var root = committer.Root()
	err = store.View(func(data *state.Data) error {
		root, err = committer.Rebuild(data)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("commitment computed", zap.Duration("duration", time.Since(start)))
	fmt.Printf("Commitment root: %v\n", root)
	return nil
}
