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
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/dexstate/statecommit/backend/utils"
)

// SaveFile writes the snapshot of the given aggregate to the given path. The
// snapshot is written to a temporary file of its own which replaces the
// target only once it is complete, so a failed save retains an existing
// snapshot and concurrent saves do not interfere.
func SaveFile(path string, data *Data) error {
	file, err := utils.CreateTempFor(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmp := file.Name()
	writer := bufio.NewWriter(file)
	err = errors.Join(
		Encode(writer, data),
		writer.Flush(),
	)
	if err == nil {
		err = file.Sync()
	}
	err = errors.Join(err, file.Close())
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to write snapshot file %s: %w", tmp, err),
			os.Remove(tmp),
		)
	}
	if err := utils.ReplaceFile(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot file %s: %w", path, err)
	}
	return nil
}

// LoadFile reads the snapshot stored at the given path.
func LoadFile(path string) (*Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	data, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to load snapshot %s: %w", path, err), file.Close())
	}
	return data, file.Close()
}
