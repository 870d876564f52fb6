// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package checkpoint coordinates the creation of consistent recovery points
// across several persistent components, such as the snapshot of the engine
// state and the commitment tree whose root is published for it.
package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dexstate/statecommit/backend/utils"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

//go:generate mockgen -source checkpoint.go -destination checkpoint_mocks.go -package checkpoint

// Checkpoint is a monotonically increasing number identifying a recovery
// point created in coordination with all participants. Checkpoint 0 denotes
// the initial state before any checkpoint was created.
type Checkpoint uint32

const (
	committedFile = "committed"
	prepareFile   = "prepare"
)

// Coordinator creates checkpoints, atomically transitioning all of its
// participants to a new checkpoint.
type Coordinator interface {
	// GetCurrentCheckpoint returns the last checkpoint that was created, or 0
	// if no checkpoint was created yet.
	GetCurrentCheckpoint() Checkpoint

	// CreateCheckpoint creates a new checkpoint. If any participant fails to
	// prepare, all participants retain their current checkpoint.
	CreateCheckpoint() (Checkpoint, error)
}

// Participant takes part in the two-phase creation of checkpoints.
type Participant interface {
	Restorer

	// GuaranteeCheckpoint checks that the participant is able to restore the
	// given checkpoint. A prepared but not yet committed checkpoint matching
	// the given one is to be committed, prepared checkpoints beyond it can be
	// discarded.
	GuaranteeCheckpoint(Checkpoint) error

	// Prepare creates the given checkpoint without making it the target of
	// future restore calls.
	Prepare(Checkpoint) error

	// Commit makes the prepared checkpoint the target of future restore calls.
	// Failing to commit a prepared checkpoint leaves the participant in a
	// state that needs to be healed by GuaranteeCheckpoint.
	Commit(Checkpoint) error

	// Abort discards a checkpoint created by Prepare.
	Abort(Checkpoint) error
}

// Restorer is able to revert a component to a previously created checkpoint.
type Restorer interface {
	Restore(Checkpoint) error
}

// GetLastCheckpoint reads the last checkpoint committed by a coordinator
// using the given directory.
func GetLastCheckpoint(directory string) (Checkpoint, error) {
	return readCheckpointFile(filepath.Join(directory, committedFile))
}

// Restore reverts the given participants to the last checkpoint committed by
// a coordinator using the given directory.
func Restore(directory string, participants ...Restorer) error {
	lastCheckpoint, err := GetLastCheckpoint(directory)
	if err != nil {
		return fmt.Errorf("failed to read checkpoint to be restored: %w", err)
	}

	errs := []error{}
	for _, p := range participants {
		if err := p.Restore(lastCheckpoint); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// coordinator implements the Coordinator interface using a two-phase commit
// protocol. The decision to commit is made durable by atomically renaming a
// file, so a crash at any point leaves a state GuaranteeCheckpoint can heal.
type coordinator struct {
	path           string
	participants   []Participant
	lastCheckpoint Checkpoint
	log            *zap.Logger
}

// NewCoordinator creates a coordinator retaining its state in the given
// directory. All participants are required to guarantee that they can
// restore the last committed checkpoint. A nil logger disables logging.
func NewCoordinator(directory string, logger *zap.Logger, participants ...Participant) (*coordinator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
	}

	testFile := filepath.Join(directory, "test")
	err := errors.Join(
		createCheckpointFile(testFile, 42),
		os.Remove(testFile),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory %s: %w", directory, err)
	}

	lastCheckpoint, err := GetLastCheckpoint(directory)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read last checkpoint: %w", err)
		}
		lastCheckpoint = 0
	}

	errs := []error{}
	for _, p := range participants {
		if err := p.GuaranteeCheckpoint(lastCheckpoint); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.Debug("checkpoint coordinator ready",
		zap.String("directory", directory),
		zap.Uint32("checkpoint", uint32(lastCheckpoint)),
	)
	return &coordinator{
		path:           directory,
		participants:   slices.Clone(participants),
		lastCheckpoint: lastCheckpoint,
		log:            logger,
	}, nil
}

func (c *coordinator) CreateCheckpoint() (Checkpoint, error) {
	commit := c.lastCheckpoint + 1

	prepared := make([]Participant, 0, len(c.participants))
	abort := func() error {
		errs := []error{}
		for _, p := range prepared {
			if err := p.Abort(commit); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, p := range c.participants {
		if err := p.Prepare(commit); err != nil {
			c.log.Warn("checkpoint preparation failed", zap.Uint32("checkpoint", uint32(commit)), zap.Error(err))
			return 0, errors.Join(err, abort())
		}
		prepared = append(prepared, p)
	}

	prepare := filepath.Join(c.path, prepareFile)
	err := createCheckpointFile(prepare, commit)
	if err == nil {
		err = os.Rename(prepare, filepath.Join(c.path, committedFile))
	}
	if err == nil {
		err = utils.SyncDirectory(c.path)
	}
	if err != nil {
		return 0, errors.Join(err, abort())
	}

	// From here on, the checkpoint is committed. Participants failing to
	// follow are healed on the next start.
	errs := []error{}
	for _, p := range c.participants {
		if err := p.Commit(commit); err != nil {
			errs = append(errs, err)
		}
	}

	c.lastCheckpoint = commit
	c.log.Info("created checkpoint", zap.Uint32("checkpoint", uint32(commit)))
	return commit, errors.Join(errs...)
}

func (c *coordinator) GetCurrentCheckpoint() Checkpoint {
	return c.lastCheckpoint
}

func createCheckpointFile(path string, checkpoint Checkpoint) error {
	var data [4]byte
	binary.BigEndian.PutUint32(data[:], uint32(checkpoint))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, err = file.Write(data[:])
	if err == nil {
		err = file.Sync()
	}
	return errors.Join(err, file.Close())
}

func readCheckpointFile(path string) (Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	content := make([]byte, 4)
	if _, err := io.ReadFull(file, content); err != nil {
		return 0, errors.Join(err, file.Close())
	}
	return Checkpoint(binary.BigEndian.Uint32(content)), file.Close()
}
