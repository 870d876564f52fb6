// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import (
	"fmt"
	"os"
)

// StoreBackend selects the storage technology retaining tree nodes.
type StoreBackend string

const (
	MemoryBackend  StoreBackend = "memory"
	LevelDbBackend StoreBackend = "leveldb"
	PebbleBackend  StoreBackend = "pebble"
)

// StoreConfig defines how the nodes of a commitment tree are retained.
type StoreConfig struct {
	// A descriptive name for this configuration, used for selecting it in
	// tools and for logging.
	Name string

	// The backend storing the nodes.
	Backend StoreBackend

	// If set, the directory of a persistent backend is created if missing.
	CreateDirectory bool
}

var InMemoryConfig = StoreConfig{
	Name:    "memory",
	Backend: MemoryBackend,
}

var LevelDbConfig = StoreConfig{
	Name:            "leveldb",
	Backend:         LevelDbBackend,
	CreateDirectory: true,
}

var PebbleConfig = StoreConfig{
	Name:            "pebble",
	Backend:         PebbleBackend,
	CreateDirectory: true,
}

var allStoreConfigs = []StoreConfig{
	InMemoryConfig,
	LevelDbConfig,
	PebbleConfig,
}

// GetConfigByName attempts to locate a configuration with the given name.
func GetConfigByName(name string) (StoreConfig, bool) {
	for _, config := range allStoreConfigs {
		if config.Name == name {
			return config, true
		}
	}
	return StoreConfig{}, false
}

// OpenNodeStore opens a node store as described by the given configuration.
// The directory is ignored by the in-memory backend.
func OpenNodeStore(config StoreConfig, directory string) (NodeStore, error) {
	if config.Backend == MemoryBackend {
		return NewMemoryStore(), nil
	}
	if config.CreateDirectory {
		if err := os.MkdirAll(directory, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}
	switch config.Backend {
	case LevelDbBackend:
		return OpenLevelDbStore(directory)
	case PebbleBackend:
		return OpenPebbleStore(directory)
	}
	return nil, fmt.Errorf("unsupported node store backend %q", config.Backend)
}
