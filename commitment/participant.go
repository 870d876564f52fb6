// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package commitment

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

const ErrCheckpointMismatch = common.ConstError("checkpoint mismatch")

const (
	committedRootFile = "committed.json"
	preparedRootFile  = "prepare.json"
)

// rootRecord names the root committed for a checkpoint.
type rootRecord struct {
	Checkpoint checkpoint.Checkpoint
	Root       common.Hash
}

// RootParticipant records the commitment root of each checkpoint so that the
// tree can be reverted to the root matching a restored snapshot.
type RootParticipant struct {
	directory string
	committer *Committer
	log       *zap.Logger
}

var _ checkpoint.Participant = &RootParticipant{}

// NewRootParticipant creates a participant recording the roots of the given
// committer in the given directory.
func NewRootParticipant(directory string, committer *Committer) (*RootParticipant, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create root directory %s: %w", directory, err)
	}
	return &RootParticipant{
		directory: directory,
		committer: committer,
		log:       committer.log.With(zap.String("participant", "root")),
	}, nil
}

func (p *RootParticipant) path(name string) string {
	return filepath.Join(p.directory, name)
}

// CommittedRoot returns the root of the last committed checkpoint, which is
// the empty root at checkpoint 0.
func (p *RootParticipant) CommittedRoot() (checkpoint.Checkpoint, common.Hash, error) {
	record, err := utils.ReadJsonFile[rootRecord](p.path(committedRootFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, common.Hash{}, nil
	}
	return record.Checkpoint, record.Root, err
}

func (p *RootParticipant) GuaranteeCheckpoint(cp checkpoint.Checkpoint) error {
	committed, _, err := p.CommittedRoot()
	if err != nil {
		return err
	}
	if committed == cp {
		return utils.RemoveIfExists(p.path(preparedRootFile))
	}
	prepared, err := utils.ReadJsonFile[rootRecord](p.path(preparedRootFile))
	if err == nil && prepared.Checkpoint == cp {
		return p.Commit(cp)
	}
	return fmt.Errorf("%w: root is at checkpoint %d, wanted %d", ErrCheckpointMismatch, committed, cp)
}

// Prepare makes the current root durable and records it for the checkpoint.
func (p *RootParticipant) Prepare(cp checkpoint.Checkpoint) error {
	p.committer.mu.Lock()
	defer p.committer.mu.Unlock()
	if err := p.committer.tree.Flush(); err != nil {
		return err
	}
	return utils.WriteJsonFile(p.path(preparedRootFile), rootRecord{
		Checkpoint: cp,
		Root:       p.committer.tree.Root(),
	})
}

func (p *RootParticipant) Commit(cp checkpoint.Checkpoint) error {
	prepared, err := utils.ReadJsonFile[rootRecord](p.path(preparedRootFile))
	if err != nil {
		return fmt.Errorf("failed to read prepared root: %w", err)
	}
	if prepared.Checkpoint != cp {
		return fmt.Errorf("%w: prepared checkpoint %d, wanted %d", ErrCheckpointMismatch, prepared.Checkpoint, cp)
	}
	if err := os.Rename(p.path(preparedRootFile), p.path(committedRootFile)); err != nil {
		return err
	}
	if err := utils.SyncDirectory(p.directory); err != nil {
		return err
	}
	p.log.Info("committed root", zap.Uint32("checkpoint", uint32(cp)), zap.Stringer("root", prepared.Root))
	return nil
}

func (p *RootParticipant) Abort(checkpoint.Checkpoint) error {
	return utils.RemoveIfExists(p.path(preparedRootFile))
}

// Restore reverts the tree to the root recorded for the given checkpoint.
func (p *RootParticipant) Restore(cp checkpoint.Checkpoint) error {
	committed, root, err := p.CommittedRoot()
	if err != nil {
		return err
	}
	if committed != cp {
		return fmt.Errorf("%w: root is at checkpoint %d, wanted %d", ErrCheckpointMismatch, committed, cp)
	}
	if err := p.committer.reset(root); err != nil {
		return err
	}
	p.log.Info("restored root", zap.Uint32("checkpoint", uint32(cp)), zap.Stringer("root", root))
	return nil
}
