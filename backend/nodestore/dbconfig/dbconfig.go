// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package dbconfig selects and opens node store implementations based on a
// configuration that may be loaded from a YAML file.
package dbconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/backend/nodestore/bolt"
	"github.com/statetrie/statetrie/backend/nodestore/cache"
	"github.com/statetrie/statetrie/backend/nodestore/ldb"
	"github.com/statetrie/statetrie/backend/nodestore/memory"
	"gopkg.in/yaml.v3"
)

// Supported store types.
const (
	MemoryType  = "memory"
	LevelDBType = "leveldb"
	BoltDBType  = "boltdb"
)

// Config describes the node store to be used.
type Config struct {
	// Type is one of memory, leveldb, or boltdb.
	Type string `yaml:"Type"`
	// Path is the database directory (leveldb) or file (boltdb).
	Path string `yaml:"Path"`
	// ReadOnly opens an existing database without modifying it.
	ReadOnly bool `yaml:"ReadOnly"`
	// CacheSize is the number of nodes kept in an LRU cache, 0 disables it.
	CacheSize int `yaml:"CacheSize"`
}

// Load reads a configuration from the given YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes a YAML store configuration. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	var res Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("invalid store configuration: %w", err)
	}
	if err := res.Validate(); err != nil {
		return Config{}, err
	}
	return res, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Type {
	case MemoryType:
	case LevelDBType, BoltDBType:
		if c.Path == "" {
			return fmt.Errorf("store type %s requires a path", c.Type)
		}
	default:
		return fmt.Errorf("unknown store type: %q", c.Type)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size: %d", c.CacheSize)
	}
	return nil
}

// Open creates the node store described by the given configuration.
func Open(cfg Config) (nodestore.NodeStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var store nodestore.NodeStore
	switch cfg.Type {
	case MemoryType:
		store = memory.NewStore()
	case LevelDBType:
		db, err := ldb.Open(cfg.Path, cfg.ReadOnly)
		if err != nil {
			return nil, err
		}
		store = db
	case BoltDBType:
		db, err := bolt.Open(cfg.Path, cfg.ReadOnly)
		if err != nil {
			return nil, err
		}
		store = db
	}
	if cfg.CacheSize == 0 {
		return store, nil
	}
	cached, err := cache.Wrap(store, cfg.CacheSize)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return cached, nil
}
