// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// nodeKeyPrefix is the table space of node entries in the database.
const nodeKeyPrefix = 'N'

// Store is a LevelDB based nodestore.NodeStore implementation. Writes are
// collected in a batch until the store is flushed.
type Store struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	mu    sync.Mutex // protects the batch
}

// Open opens or creates a LevelDB database in the given directory.
func Open(path string, readOnly bool) (*Store, error) {
	opts := &opt.Options{
		Filter:   filter.NewBloomFilter(10),
		ReadOnly: readOnly,
	}
	if readOnly {
		opts.ErrorIfMissing = true
	}
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", path, err)
	}
	return &Store{db: db, batch: new(leveldb.Batch)}, nil
}

func toKey(hash common.Hash) []byte {
	res := make([]byte, 0, len(hash)+1)
	res = append(res, nodeKeyPrefix)
	return append(res, hash[:]...)
}

func (s *Store) Get(hash common.Hash) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil, nodestore.ErrClosed
	}
	data, err := s.db.Get(toKey(hash), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			// Entries still in the batch are not visible to the database yet.
			if data, found := s.findInBatch(hash); found {
				return data, nil
			}
			return nil, fmt.Errorf("%w: %v", nodestore.ErrNotFound, hash)
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) findInBatch(hash common.Hash) ([]byte, bool) {
	key := string(toKey(hash))
	var res []byte
	found := false
	// The replay never fails for a collecting handler.
	_ = s.batch.Replay(replayFunc(func(k, v []byte) {
		if string(k) == key {
			res = append([]byte(nil), v...)
			found = true
		}
	}))
	return res, found
}

func (s *Store) Put(hash common.Hash, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nodestore.ErrClosed
	}
	// The batch copies the data.
	s.batch.Put(toKey(hash), data)
	return nil
}

func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

func (s *Store) flush() error {
	if s.batch == nil {
		return nodestore.ErrClosed
	}
	if s.batch.Len() == 0 {
		return nil
	}
	if err := s.db.Write(s.batch, nil); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	s.batch.Reset()
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil
	}
	flushErr := s.flush()
	s.batch = nil
	return errors.Join(flushErr, s.db.Close())
}

// replayFunc adapts a function to the leveldb.BatchReplay interface, ignoring
// deletions, which are never issued by this store.
type replayFunc func(key, value []byte)

func (f replayFunc) Put(key, value []byte) {
	f(key, value)
}

func (f replayFunc) Delete([]byte) {}
