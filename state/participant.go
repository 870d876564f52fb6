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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dexstate/statecommit/backend/utils"
	"github.com/dexstate/statecommit/backend/utils/checkpoint"
	"github.com/dexstate/statecommit/common"
	"go.uber.org/zap"
)

const (
	ErrCheckpointMismatch = common.ConstError("checkpoint mismatch")
	ErrDigestMismatch     = common.ConstError("snapshot digest mismatch")
)

const (
	snapshotFileName      = "snapshot"
	preparedSnapshotName  = "snapshot.prepare"
	committedMetaFileName = "committed.json"
	preparedMetaFileName  = "prepare.json"
)

// snapshotMeta describes the snapshot file of a checkpoint.
type snapshotMeta struct {
	Checkpoint checkpoint.Checkpoint
	Digest     common.Hash
}

// SnapshotParticipant persists the aggregate of a store as part of the
// checkpoints created by a coordinator. The snapshot of the last committed
// checkpoint is kept in the participant's directory.
type SnapshotParticipant struct {
	directory string
	store     *Store
	log       *zap.Logger
}

var _ checkpoint.Participant = &SnapshotParticipant{}

// NewSnapshotParticipant creates a participant saving the given store's
// aggregate into the given directory.
func NewSnapshotParticipant(directory string, store *Store) (*SnapshotParticipant, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", directory, err)
	}
	return &SnapshotParticipant{
		directory: directory,
		store:     store,
		log:       store.log.With(zap.String("participant", "snapshot")),
	}, nil
}

// SnapshotPath is the path of the snapshot of the last committed checkpoint.
func (p *SnapshotParticipant) SnapshotPath() string {
	return filepath.Join(p.directory, snapshotFileName)
}

func (p *SnapshotParticipant) path(name string) string {
	return filepath.Join(p.directory, name)
}

// committed returns the meta data of the last committed checkpoint, which is
// checkpoint 0 without a snapshot if nothing was committed yet.
func (p *SnapshotParticipant) committed() (snapshotMeta, error) {
	meta, err := utils.ReadJsonFile[snapshotMeta](p.path(committedMetaFileName))
	if errors.Is(err, os.ErrNotExist) {
		return snapshotMeta{}, nil
	}
	return meta, err
}

func (p *SnapshotParticipant) GuaranteeCheckpoint(cp checkpoint.Checkpoint) error {
	committed, err := p.committed()
	if err != nil {
		return err
	}
	if committed.Checkpoint == cp {
		return p.discardPrepared()
	}
	prepared, err := utils.ReadJsonFile[snapshotMeta](p.path(preparedMetaFileName))
	if err == nil && prepared.Checkpoint == cp {
		p.log.Info("completing interrupted checkpoint", zap.Uint32("checkpoint", uint32(cp)))
		return p.Commit(cp)
	}
	return fmt.Errorf("%w: snapshot is at checkpoint %d, wanted %d", ErrCheckpointMismatch, committed.Checkpoint, cp)
}

func (p *SnapshotParticipant) Prepare(cp checkpoint.Checkpoint) error {
	path := p.path(preparedSnapshotName)
	if err := p.store.Save(path); err != nil {
		return err
	}
	digest, err := utils.HashFile(path)
	if err != nil {
		return err
	}
	return utils.WriteJsonFile(p.path(preparedMetaFileName), snapshotMeta{
		Checkpoint: cp,
		Digest:     digest,
	})
}

// Commit moves the prepared snapshot in place before the meta data naming
// it. If interrupted in between, the prepared meta data still identifies the
// snapshot, allowing GuaranteeCheckpoint to complete the commit.
func (p *SnapshotParticipant) Commit(cp checkpoint.Checkpoint) error {
	prepared, err := utils.ReadJsonFile[snapshotMeta](p.path(preparedMetaFileName))
	if err != nil {
		return fmt.Errorf("failed to read prepared checkpoint: %w", err)
	}
	if prepared.Checkpoint != cp {
		return fmt.Errorf("%w: prepared checkpoint %d, wanted %d", ErrCheckpointMismatch, prepared.Checkpoint, cp)
	}
	err = os.Rename(p.path(preparedSnapshotName), p.SnapshotPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := p.verify(p.SnapshotPath(), prepared.Digest); err != nil {
		return err
	}
	if err := os.Rename(p.path(preparedMetaFileName), p.path(committedMetaFileName)); err != nil {
		return err
	}
	if err := utils.SyncDirectory(p.directory); err != nil {
		return err
	}
	p.log.Debug("committed snapshot", zap.Uint32("checkpoint", uint32(cp)), zap.Stringer("digest", prepared.Digest))
	return nil
}

func (p *SnapshotParticipant) Abort(cp checkpoint.Checkpoint) error {
	p.log.Debug("aborting snapshot", zap.Uint32("checkpoint", uint32(cp)))
	return p.discardPrepared()
}

// Restore replaces the aggregate of the store by the snapshot of the given
// checkpoint, which has to be the last committed checkpoint.
func (p *SnapshotParticipant) Restore(cp checkpoint.Checkpoint) error {
	committed, err := p.committed()
	if err != nil {
		return err
	}
	if committed.Checkpoint != cp {
		return fmt.Errorf("%w: snapshot is at checkpoint %d, wanted %d", ErrCheckpointMismatch, committed.Checkpoint, cp)
	}
	if cp == 0 {
		p.store.Replace(NewData())
		return nil
	}
	if err := p.verify(p.SnapshotPath(), committed.Digest); err != nil {
		return err
	}
	data, err := LoadFile(p.SnapshotPath())
	if err != nil {
		return err
	}
	p.store.Replace(data)
	return nil
}

func (p *SnapshotParticipant) verify(path string, want common.Hash) error {
	got, err := utils.HashFile(path)
	if err != nil {
		return err
	}
	if want != got {
		return fmt.Errorf("%w: %s has digest %v, wanted %v", ErrDigestMismatch, path, got, want)
	}
	return nil
}

func (p *SnapshotParticipant) discardPrepared() error {
	return errors.Join(
		utils.RemoveIfExists(p.path(preparedSnapshotName)),
		utils.RemoveIfExists(p.path(preparedMetaFileName)),
	)
}
