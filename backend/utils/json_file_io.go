// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dexstate/statecommit/common"
	"golang.org/x/crypto/blake2b"
)

// ReadJsonFile reads a JSON file and unmarshals it into a value of type T.
func ReadJsonFile[T any](file string) (T, error) {
	var zero T
	data, err := os.ReadFile(file)
	if err != nil {
		return zero, err
	}
	var res T
	if err := json.Unmarshal(data, &res); err != nil {
		return zero, fmt.Errorf("invalid content of %s: %w", file, err)
	}
	return res, nil
}

// WriteJsonFile marshals a value of type T into a JSON file. The file is
// replaced atomically, so readers either see the old or the new content.
func WriteJsonFile[T any](file string, data T) error {
	content, err := json.Marshal(data)
	if err != nil {
		return err
	}
	out, err := CreateTempFor(file)
	if err != nil {
		return err
	}
	tmp := out.Name()
	_, err = out.Write(content)
	if err == nil {
		err = out.Sync()
	}
	if err = errors.Join(err, out.Close()); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return ReplaceFile(tmp, file)
}

// CreateTempFor creates a new temporary file next to the given file. Each
// call gets its own file, so concurrent writers of the same target do not
// interfere.
func CreateTempFor(file string) (*os.File, error) {
	return os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
}

// ReplaceFile renames tmp to file and syncs the parent directory, making the
// rename durable.
func ReplaceFile(tmp, file string) error {
	if err := os.Rename(tmp, file); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return SyncDirectory(filepath.Dir(file))
}

// SyncDirectory flushes the entries of the given directory to disk.
func SyncDirectory(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	return errors.Join(d.Sync(), d.Close())
}

// RemoveIfExists deletes the given file, ignoring files that do not exist.
func RemoveIfExists(file string) error {
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HashFile computes the BLAKE2b-256 digest of the content of the given file.
func HashFile(file string) (common.Hash, error) {
	in, err := os.Open(file)
	if err != nil {
		return common.Hash{}, err
	}
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return common.Hash{}, errors.Join(err, in.Close())
	}
	if _, err := io.Copy(hasher, in); err != nil {
		return common.Hash{}, errors.Join(err, in.Close())
	}
	var res common.Hash
	copy(res[:], hasher.Sum(nil))
	return res, in.Close()
}
