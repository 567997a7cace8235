// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bolt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/statetrie/statetrie/backend/nodestore"
	"github.com/statetrie/statetrie/common"
	"go.etcd.io/bbolt"
)

// bucket is the BoltDB bucket holding all node entries.
var bucket = []byte("nodes")

// Store is a BoltDB based nodestore.NodeStore implementation. Every Put is
// committed in its own transaction, so Flush has nothing to do.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates a BoltDB database file at the given path.
func Open(path string, readOnly bool) (*Store, error) {
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("could not create dir for BoltDB: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", path, err)
	}
	if !readOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("could not create node bucket: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(hash common.Hash) ([]byte, error) {
	var res []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Values are only valid within the transaction.
		if data := b.Get(hash[:]); data != nil {
			res = bytes.Clone(data)
		}
		return nil
	})
	if err != nil {
		return nil, toStoreError(err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %v", nodestore.ErrNotFound, hash)
	}
	return res, nil
}

func (s *Store) Put(hash common.Hash, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(hash[:], data)
	})
	return toStoreError(err)
}

func (s *Store) Flush() error {
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func toStoreError(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return nodestore.ErrClosed
	}
	return err
}
